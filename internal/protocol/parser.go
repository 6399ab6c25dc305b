package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hailam/pbrain/internal/board"
)

// Kind identifies a referee command.
type Kind int

const (
	CmdUnknown Kind = iota
	CmdError        // recognised command with bad arguments
	CmdStart
	CmdTurn
	CmdBegin
	CmdBoard
	CmdInfo
	CmdEnd
	CmdAbout
	CmdRestart

	// Debug commands, never sent by a manager.
	CmdDump
	CmdRender
)

// Command is one parsed input line.
type Command struct {
	Kind  Kind
	Name  string // command word as received
	Size  int          // START
	Move  board.Square // TURN
	Key   string       // INFO
	Value string       // INFO value, RENDER path
	Err   error        // CmdError
}

// BoardLine is one line inside a BOARD block.
type BoardLine struct {
	X, Y  int
	Field int
	Done  bool
}

var errMissingArgs = errors.New("missing arguments")

// Parse parses a command line. Command words are case-insensitive and
// surrounding whitespace is ignored. Extra arguments are tolerated.
func Parse(line string) Command {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{Kind: CmdUnknown}
	}
	name := parts[0]
	args := parts[1:]

	fail := func(err error) Command {
		return Command{Kind: CmdError, Name: name, Err: fmt.Errorf("%s: %w", strings.ToUpper(name), err)}
	}

	switch strings.ToUpper(name) {
	case "START":
		if len(args) == 0 {
			return fail(errMissingArgs)
		}
		size, err := strconv.Atoi(args[0])
		if err != nil {
			return fail(fmt.Errorf("invalid size %q", args[0]))
		}
		return Command{Kind: CmdStart, Name: name, Size: size}
	case "TURN":
		if len(args) == 0 {
			return fail(errMissingArgs)
		}
		sq, err := board.ParseSquare(strings.Join(args, ""))
		if err != nil {
			return fail(err)
		}
		return Command{Kind: CmdTurn, Name: name, Move: sq}
	case "BEGIN":
		return Command{Kind: CmdBegin, Name: name}
	case "BOARD":
		return Command{Kind: CmdBoard, Name: name}
	case "INFO":
		if len(args) < 2 {
			return fail(errMissingArgs)
		}
		return Command{Kind: CmdInfo, Name: name, Key: strings.ToLower(args[0]), Value: strings.Join(args[1:], " ")}
	case "END":
		return Command{Kind: CmdEnd, Name: name}
	case "ABOUT":
		return Command{Kind: CmdAbout, Name: name}
	case "RESTART":
		return Command{Kind: CmdRestart, Name: name}
	case "DUMP":
		return Command{Kind: CmdDump, Name: name}
	case "RENDER":
		if len(args) == 0 {
			return fail(errMissingArgs)
		}
		return Command{Kind: CmdRender, Name: name, Value: strings.Join(args, " ")}
	}
	return Command{Kind: CmdUnknown, Name: name}
}

// ParseBoardLine parses "x,y,field" or DONE.
func ParseBoardLine(line string) (BoardLine, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return BoardLine{}, errors.New("empty BOARD line")
	}
	if strings.EqualFold(trimmed, "DONE") {
		return BoardLine{Done: true}, nil
	}
	v, err := parseInts(trimmed, 3)
	if err != nil {
		return BoardLine{}, fmt.Errorf("BOARD line %q: %w", trimmed, err)
	}
	return BoardLine{X: v[0], Y: v[1], Field: v[2]}, nil
}

// parseInts reads the first n comma-separated non-negative integers of s.
// Spaces are ignored anywhere.
func parseInts(s string, n int) ([]int, error) {
	fields := strings.Split(strings.ReplaceAll(s, " ", ""), ",")
	out := make([]int, 0, n)
	for _, f := range fields {
		if f == "" {
			continue
		}
		if len(out) == n {
			break
		}
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid coordinates %q", s)
		}
		out = append(out, v)
	}
	if len(out) < n {
		return nil, fmt.Errorf("invalid coordinates %q", s)
	}
	return out, nil
}
