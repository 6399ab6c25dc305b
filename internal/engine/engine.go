package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hailam/pbrain/internal/board"
	"github.com/hailam/pbrain/internal/book"
)

// SearchInfo contains information about one completed iteration.
type SearchInfo struct {
	Depth    int
	Score    int
	Move     board.Square
	Nodes    uint64
	Time     time.Duration
	PV       []board.Square
	HashFull int // Permille of hash table used
}

// Move sources reported in SearchResult.
const (
	SourceBook     = "book"
	SourceWin      = "win"
	SourceBlock    = "block"
	SourceSearch   = "search"
	SourceFallback = "fallback"
)

// SearchResult describes how the engine chose a move.
type SearchResult struct {
	Hash   uint64 // board hash before the move
	Stones int    // stones on the board before the move
	Move   board.Square
	Depth  int // deepest completed iteration, 0 without search
	Score  int
	Source string
}

// Outcome of a finished game from the engine's point of view.
type Outcome int

const (
	Win Outcome = iota + 1
	Loss
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Draw:
		return "draw"
	}
	return "unknown"
}

// GameResult is reported once per game through OnGameOver.
type GameResult struct {
	Outcome    Outcome
	MovedFirst bool
	Moves      int
	Duration   time.Duration
}

// UploadCell is one line of a bulk board upload.
type UploadCell struct {
	X, Y  int
	Field int // 1 mine, 2 opponent, 3 forbidden
}

// Options configure an Engine. Zero values select the defaults.
type Options struct {
	TTBits   int
	MaxDepth int
	MoveTime time.Duration

	// MaxMemory caps the transposition table in bytes. Zero leaves only the
	// system memory limit.
	MaxMemory uint64
}

// Engine is the game state plus everything needed to pick moves. It is
// created once per process and reset on Start and Restart. An Engine must not
// be used from more than one goroutine.
type Engine struct {
	board    *board.Board
	eval     *Evaluator
	tt       *TranspositionTable
	orderer  *MoveOrderer
	tm       *TimeManager
	searcher *Searcher
	book     *book.Book

	opts Options

	// Referee clock, from INFO.
	timeoutTurn  time.Duration
	timeoutMatch time.Duration
	timeLeft     time.Duration
	used         time.Duration

	started    bool
	uploading  bool
	over       bool
	movedFirst bool
	gameStart  time.Time

	// Stone played by the move command in progress, NoSquare until then.
	committed board.Square

	// Callbacks
	OnInfo     func(SearchInfo)
	OnResult   func(SearchResult)
	OnGameOver func(GameResult)
}

// NewEngine creates an engine. Start must be called before any move.
func NewEngine(opts Options) *Engine {
	if opts.TTBits <= 0 {
		opts.TTBits = DefaultTTBits
	}
	if opts.MaxDepth <= 0 || opts.MaxDepth > MaxDepth {
		opts.MaxDepth = MaxDepth
	}
	if opts.MoveTime <= 0 {
		opts.MoveTime = DefaultMoveTime
	}
	if opts.MaxMemory > 0 {
		opts.TTBits = clampTTBits(opts.TTBits, opts.MaxMemory)
	}

	e := &Engine{
		board:   board.New(),
		eval:    NewEvaluator(),
		tt:      NewTranspositionTable(opts.TTBits),
		orderer: NewMoveOrderer(),
		tm:      NewTimeManager(),
		opts:    opts,

		committed: board.NoSquare,
	}
	e.searcher = NewSearcher(e.board, e.eval, e.tt, e.orderer, e.tm)
	return e
}

// SetBook installs an opening book consulted before searching. nil disables it.
func (e *Engine) SetBook(b *book.Book) {
	e.book = b
}

// Board returns the current board. Callers must not modify it.
func (e *Engine) Board() *board.Board {
	return e.board
}

// Stop aborts a running search; the best move of the last completed depth is
// still played.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Start begins a new game on a size x size board. Only 20 is supported.
func (e *Engine) Start(size int) error {
	if size != board.Size {
		return fmt.Errorf("start %d: %w", size, ErrUnsupportedSize)
	}
	e.reset()
	e.started = true
	return nil
}

// Restart begins a new game with the current board size.
func (e *Engine) Restart() error {
	if !e.started {
		return ErrNotInitialized
	}
	e.reset()
	return nil
}

func (e *Engine) reset() {
	e.board.Clear()
	e.eval.Clear()
	e.tt.Clear()
	e.orderer.Clear()
	e.searcher.Unwind()
	e.uploading = false
	e.over = false
	e.movedFirst = false
	e.committed = board.NoSquare
	e.used = 0
	e.gameStart = time.Now()
}

// SetInfo applies an INFO key from the referee. Times are in milliseconds and
// max_memory in bytes. Unknown keys are ignored.
func (e *Engine) SetInfo(key, value string) error {
	switch key {
	case "timeout_turn", "timeout_match", "time_left":
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("info %s: %w", key, err)
		}
		d := time.Duration(ms) * time.Millisecond
		switch key {
		case "timeout_turn":
			e.timeoutTurn = d
		case "timeout_match":
			e.timeoutMatch = d
		default:
			e.timeLeft = d
		}
	case "max_memory":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("info %s: %w", key, err)
		}
		e.limitMemory(n)
	default:
		log.Debug().Str("key", key).Str("value", value).Msg("info-ignored")
	}
	return nil
}

// limitMemory shrinks the transposition table to use at most half of maxBytes.
// Zero means no limit.
func (e *Engine) limitMemory(maxBytes uint64) {
	if maxBytes == 0 {
		return
	}
	bits := clampTTBits(e.opts.TTBits, maxBytes/2)
	if uint64(1)<<bits >= e.tt.Size() {
		return
	}
	e.opts.TTBits = bits
	e.tt = NewTranspositionTable(bits)
	e.searcher.tt = e.tt
}

// Begin asks the engine to make the first move of the game.
func (e *Engine) Begin() (board.Square, error) {
	e.committed = board.NoSquare
	if !e.started {
		return board.NoSquare, ErrNotInitialized
	}
	if e.board.StoneCount() == 0 {
		e.movedFirst = true
	}
	return e.decide()
}

// OpponentMove applies the opponent's stone at (x, y) and returns the reply.
func (e *Engine) OpponentMove(x, y int) (board.Square, error) {
	e.committed = board.NoSquare
	if !e.started {
		return board.NoSquare, ErrNotInitialized
	}
	sq, ok := board.SquareAt(x, y)
	if !ok {
		return board.NoSquare, fmt.Errorf("turn %d,%d: %w", x, y, board.ErrOutOfBounds)
	}
	switch e.board.At(sq) {
	case board.Empty:
	case board.Forbidden:
		return board.NoSquare, fmt.Errorf("turn %s: %w", sq, board.ErrCellForbidden)
	default:
		return board.NoSquare, fmt.Errorf("turn %s: %w", sq, board.ErrCellOccupied)
	}
	if e.over {
		return board.NoSquare, ErrGameOver
	}

	e.play(sq, board.Opponent)
	if e.board.FiveThrough(sq) {
		e.finish(Loss)
		return board.NoSquare, fmt.Errorf("turn %s: %w", sq, ErrGameOver)
	}
	return e.decide()
}

// BeginUpload clears the board ahead of a sequence of UploadCell calls.
func (e *Engine) BeginUpload() error {
	if !e.started {
		return ErrNotInitialized
	}
	e.board.Clear()
	e.eval.Clear()
	e.uploading = true
	e.over = false
	return nil
}

// UploadCell sets one cell of an upload in progress. Fields are 1 for mine,
// 2 for the opponent and 3 for forbidden.
func (e *Engine) UploadCell(x, y, field int) error {
	if !e.uploading {
		return ErrNotUploading
	}
	c := board.CellFromField(field)
	if c == board.Empty {
		return fmt.Errorf("board %d,%d,%d: %w", x, y, field, ErrBadField)
	}
	return e.board.Set(x, y, c)
}

// UploadDone finishes an upload: the hash and evaluator are rebuilt from the
// full board and the engine replies with its move.
func (e *Engine) UploadDone() (board.Square, error) {
	e.committed = board.NoSquare
	if !e.uploading {
		return board.NoSquare, ErrNotUploading
	}
	e.uploading = false
	e.board.RecomputeHash()
	e.eval.RebuildFromBoard(e.board)

	mine, theirs := 0, 0
	for sq := board.Square(0); sq < board.NumCells; sq++ {
		switch e.board.At(sq) {
		case board.Mine:
			mine++
		case board.Opponent:
			theirs++
		}
	}
	e.movedFirst = mine == theirs

	if e.board.CheckFiveInARow(board.Opponent) {
		e.finish(Loss)
		return board.NoSquare, fmt.Errorf("board: %w", ErrGameOver)
	}
	return e.decide()
}

// CancelUpload abandons an upload in progress, keeping whatever cells were
// already set and bringing the hash and evaluator back in line with them.
func (e *Engine) CancelUpload() {
	if !e.uploading {
		return
	}
	e.uploading = false
	e.board.RecomputeHash()
	e.eval.RebuildFromBoard(e.board)
}

// BulkUpload replaces the board with cells and returns the engine's move.
func (e *Engine) BulkUpload(cells []UploadCell) (board.Square, error) {
	if err := e.BeginUpload(); err != nil {
		return board.NoSquare, err
	}
	for _, c := range cells {
		if err := e.UploadCell(c.X, c.Y, c.Field); err != nil {
			e.CancelUpload()
			return board.NoSquare, err
		}
	}
	return e.UploadDone()
}

// EmergencyMove returns a legal square without searching or allocating: the
// empty cell nearest the centre, earliest in raster order among equals, or
// the centre itself when the board has no empty cell.
func (e *Engine) EmergencyMove() board.Square {
	best := board.NoSquare
	bestDist := board.Size * 2
	for sq := board.Square(0); sq < board.NumCells; sq++ {
		if e.board.At(sq) != board.Empty {
			continue
		}
		if d := sq.CenterDistance(); d < bestDist {
			best, bestDist = sq, d
		}
	}
	if best == board.NoSquare {
		return board.NewSquare(board.Center, board.Center)
	}
	return best
}

// Recover restores the board after a panic inside a move command and returns
// the reply to send in place of the lost one. A stone the command already
// played is that reply; otherwise the emergency move is played.
func (e *Engine) Recover() board.Square {
	e.searcher.Unwind()
	e.board.RecomputeHash()
	e.eval.RebuildFromBoard(e.board)
	e.uploading = false

	if sq := e.committed; sq != board.NoSquare && e.board.At(sq) == board.Mine {
		e.committed = board.NoSquare
		return sq
	}
	sq := e.EmergencyMove()
	if e.board.At(sq) == board.Empty {
		e.play(sq, board.Mine)
	}
	return sq
}

func (e *Engine) play(sq board.Square, side board.Cell) {
	e.board.Place(sq, side)
	e.eval.OnStonePlaced(e.board, sq)
}

func (e *Engine) finish(o Outcome) {
	if e.over {
		return
	}
	e.over = true
	log.Debug().Stringer("outcome", o).Int("stones", e.board.StoneCount()).Msg("game-over")
	if e.OnGameOver != nil {
		e.OnGameOver(GameResult{
			Outcome:    o,
			MovedFirst: e.movedFirst,
			Moves:      e.board.StoneCount(),
			Duration:   time.Since(e.gameStart),
		})
	}
}

// decide runs the move pipeline for the side to move (always Mine) and plays
// the chosen move.
func (e *Engine) decide() (board.Square, error) {
	if e.board.IsFull() {
		e.finish(Draw)
		return board.NoSquare, ErrNoLegalMove
	}
	if e.over || e.board.CheckFiveInARow(board.Mine) || e.board.CheckFiveInARow(board.Opponent) {
		return board.NoSquare, ErrGameOver
	}

	start := time.Now()
	res := e.choose()
	e.used += time.Since(start)

	e.play(res.Move, board.Mine)
	e.committed = res.Move
	log.Debug().
		Str("move", res.Move.String()).
		Str("source", res.Source).
		Int("depth", res.Depth).
		Int("score", res.Score).
		Dur("elapsed", time.Since(start)).
		Msg("move-chosen")
	if e.OnResult != nil {
		e.OnResult(res)
	}

	switch {
	case e.board.FiveThrough(res.Move):
		e.finish(Win)
	case e.board.IsFull():
		e.finish(Draw)
	}
	return res.Move, nil
}

func (e *Engine) choose() SearchResult {
	res := SearchResult{Hash: e.board.Hash(), Stones: e.board.StoneCount()}

	if m, ok := e.findFive(board.Mine); ok {
		res.Move, res.Source, res.Score = m, SourceWin, WinScore
		return res
	}
	if m, ok := e.findFive(board.Opponent); ok {
		res.Move, res.Source = m, SourceBlock
		return res
	}
	if e.book != nil {
		if m, ok := e.book.Probe(e.board); ok {
			res.Move, res.Source = m, SourceBook
			return res
		}
	}
	if m, depth, score, ok := e.iterativeDeepening(); ok {
		res.Move, res.Source, res.Depth, res.Score = m, SourceSearch, depth, score
		return res
	}
	res.Move, res.Source = e.EmergencyMove(), SourceFallback
	return res
}

// findFive returns the first empty square in raster order where player would
// complete five.
func (e *Engine) findFive(player board.Cell) (board.Square, bool) {
	for sq := board.Square(0); sq < board.NumCells; sq++ {
		if e.board.At(sq) == board.Empty && e.board.MakesFive(sq, player) {
			return sq, true
		}
	}
	return board.NoSquare, false
}

func (e *Engine) turnLimits() TurnLimits {
	left := e.timeLeft
	if left == 0 && e.timeoutMatch > 0 {
		left = max(e.timeoutMatch-e.used, time.Millisecond)
	}
	return TurnLimits{
		MoveTime:    e.opts.MoveTime,
		TimeoutTurn: e.timeoutTurn,
		TimeLeft:    left,
		MovesPlayed: e.board.StoneCount(),
	}
}

// iterativeDeepening searches depth 1, 2, ... until the deadline and returns
// the best move of the deepest completed iteration.
func (e *Engine) iterativeDeepening() (board.Square, int, int, bool) {
	e.tm.Init(e.turnLimits())
	e.searcher.Reset()

	root := Squares(GenerateCandidates(e.board, board.Mine))
	if len(root) == 0 {
		return board.NoSquare, 0, 0, false
	}
	if len(root) == 1 {
		return root[0], 0, 0, true
	}

	bestMove := board.NoSquare
	bestScore, bestDepth := 0, 0
	for depth := 1; depth <= e.opts.MaxDepth; depth++ {
		move, score, ok := e.searcher.SearchRoot(depth, root, board.Mine)
		if !ok {
			log.Debug().Int("depth", depth).Uint64("nodes", e.searcher.Nodes()).Msg("search-aborted")
			break
		}
		bestMove, bestScore, bestDepth = move, score, depth
		moveToFront(root, move)

		info := SearchInfo{
			Depth:    depth,
			Score:    score,
			Move:     move,
			Nodes:    e.searcher.Nodes(),
			Time:     e.tm.Elapsed(),
			PV:       e.searcher.GetPV(),
			HashFull: e.tt.HashFull(),
		}
		log.Debug().
			Int("depth", info.Depth).
			Int("score", info.Score).
			Uint64("nodes", info.Nodes).
			Dur("time", info.Time).
			Int("hashfull", info.HashFull).
			Float64("tt-hit-rate", e.tt.HitRate()).
			Strs("pv", lo.Map(info.PV, func(sq board.Square, _ int) string { return sq.String() })).
			Msg("depth-complete")
		if e.OnInfo != nil {
			e.OnInfo(info)
		}

		// Early termination: forced win found
		if score >= WinThreshold {
			break
		}
		if e.tm.PastHalf() {
			break
		}
	}
	return bestMove, bestScore, bestDepth, bestMove != board.NoSquare
}

// moveToFront moves m to index 0, keeping the relative order of the rest.
func moveToFront(moves []board.Square, m board.Square) {
	for i, sq := range moves {
		if sq == m {
			copy(moves[1:i+1], moves[:i])
			moves[0] = m
			return
		}
	}
}
