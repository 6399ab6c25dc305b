// Package protocol implements the Gomocup brain protocol on top of an engine.
package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hailam/pbrain/internal/board"
	"github.com/hailam/pbrain/internal/engine"
	"github.com/hailam/pbrain/internal/render"
)

// About is the reply to ABOUT.
const About = `name="pbrain-gomoku", version="1.0.0", author="hailam", country="FR"`

// Protocol reads referee commands and answers them one line at a time.
type Protocol struct {
	engine  *engine.Engine
	out     *bufio.Writer
	scanner *bufio.Scanner

	// Diag receives DUMP output. Defaults to stderr.
	Diag io.Writer
	// CellSize is the pixel size of one cell for RENDER.
	CellSize int
}

// New creates a protocol handler writing replies to out.
func New(eng *engine.Engine, out io.Writer) *Protocol {
	return &Protocol{
		engine:   eng,
		out:      bufio.NewWriter(out),
		Diag:     os.Stderr,
		CellSize: render.DefaultCellSize,
	}
}

// Run processes commands from in until END or end of input.
func (p *Protocol) Run(in io.Reader) error {
	p.scanner = bufio.NewScanner(in)
	defer p.out.Flush()

	for p.scanner.Scan() {
		line := p.scanner.Text()
		cmd := Parse(line)
		if cmd.Kind == CmdUnknown && cmd.Name == "" {
			continue
		}
		log.Debug().Str("line", line).Msg("command-received")

		switch cmd.Kind {
		case CmdStart:
			p.handleStart(cmd.Size)
		case CmdTurn:
			p.handleMove(func() (board.Square, error) {
				return p.engine.OpponentMove(cmd.Move.X(), cmd.Move.Y())
			})
		case CmdBegin:
			p.handleMove(p.engine.Begin)
		case CmdBoard:
			p.handleBoard()
		case CmdInfo:
			if err := p.engine.SetInfo(cmd.Key, cmd.Value); err != nil {
				log.Warn().Err(err).Msg("info-rejected")
			}
		case CmdEnd:
			return nil
		case CmdAbout:
			p.reply(About)
		case CmdRestart:
			p.handleRestart()
		case CmdDump:
			fmt.Fprint(p.Diag, p.engine.Board().String())
		case CmdRender:
			p.handleRender(cmd.Value)
		case CmdError:
			p.replyError(cmd.Err)
		default:
			p.reply("UNKNOWN " + cmd.Name)
		}
	}

	return p.scanner.Err()
}

func (p *Protocol) reply(s string) {
	p.out.WriteString(s)
	p.out.WriteByte('\n')
	p.out.Flush()
	log.Debug().Str("reply", s).Msg("reply-sent")
}

func (p *Protocol) replyError(err error) {
	p.reply("ERROR " + err.Error())
}

func (p *Protocol) handleStart(size int) {
	if err := p.engine.Start(size); err != nil {
		p.replyError(err)
		return
	}
	p.reply("OK")
}

func (p *Protocol) handleRestart() {
	if err := p.engine.Restart(); err != nil {
		p.replyError(err)
		return
	}
	p.reply("OK")
}

// handleMove runs a move-producing command and prints the move. A panic
// anywhere below is turned into the engine's emergency move.
func (p *Protocol) handleMove(f func() (board.Square, error)) {
	sq, err := p.guard(f)
	if err != nil {
		p.replyError(err)
		return
	}
	p.reply(sq.String())
}

func (p *Protocol) guard(f func() (board.Square, error)) (sq board.Square, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("move-panic-recovered")
			sq, err = p.engine.Recover(), nil
		}
	}()
	return f()
}

// handleBoard reads cell lines up to DONE and replies with the engine's move.
// Only the first error of the block is reported, after DONE.
func (p *Protocol) handleBoard() {
	firstErr := p.engine.BeginUpload()
	done := false

	for p.scanner.Scan() {
		line := p.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		bl, err := ParseBoardLine(line)
		if err == nil && bl.Done {
			done = true
			break
		}
		if err == nil && firstErr == nil {
			err = p.engine.UploadCell(bl.X, bl.Y, bl.Field)
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if !done && firstErr == nil {
		firstErr = errors.New("missing DONE for BOARD")
	}
	if firstErr != nil {
		p.engine.CancelUpload()
		p.replyError(firstErr)
		return
	}
	p.handleMove(p.engine.UploadDone)
}

func (p *Protocol) handleRender(path string) {
	if err := render.WritePNGFile(path, p.engine.Board(), p.CellSize); err != nil {
		log.Error().Err(err).Str("path", path).Msg("render-failed")
		return
	}
	log.Info().Str("path", path).Msg("board-rendered")
}
