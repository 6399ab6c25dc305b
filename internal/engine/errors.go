package engine

import "errors"

var (
	ErrNotInitialized  = errors.New("game not started")
	ErrUnsupportedSize = errors.New("unsupported board size")
	ErrNoLegalMove     = errors.New("no legal move")
	ErrGameOver        = errors.New("game already decided")
	ErrNotUploading    = errors.New("no board upload in progress")
	ErrBadField        = errors.New("unknown board field")
)
