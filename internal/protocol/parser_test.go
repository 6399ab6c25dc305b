package protocol

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/hailam/pbrain/internal/board"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"START 20", Command{Kind: CmdStart, Name: "START", Size: 20}},
		{"  start   20  extra", Command{Kind: CmdStart, Name: "start", Size: 20}},
		{"TURN 10,11", Command{Kind: CmdTurn, Name: "TURN", Move: board.NewSquare(10, 11)}},
		{"tUrN 10 , 11", Command{Kind: CmdTurn, Name: "tUrN", Move: board.NewSquare(10, 11)}},
		{"\tTURN 5,  5\t", Command{Kind: CmdTurn, Name: "TURN", Move: board.NewSquare(5, 5)}},
		{"BEGIN", Command{Kind: CmdBegin, Name: "BEGIN"}},
		{"board", Command{Kind: CmdBoard, Name: "board"}},
		{"INFO timeout_turn 1000", Command{Kind: CmdInfo, Name: "INFO", Key: "timeout_turn", Value: "1000"}},
		{"INFO folder C:\\my dir", Command{Kind: CmdInfo, Name: "INFO", Key: "folder", Value: "C:\\my dir"}},
		{"END", Command{Kind: CmdEnd, Name: "END"}},
		{"About", Command{Kind: CmdAbout, Name: "About"}},
		{"RESTART", Command{Kind: CmdRestart, Name: "RESTART"}},
		{"DUMP", Command{Kind: CmdDump, Name: "DUMP"}},
		{"RENDER /tmp/b.png", Command{Kind: CmdRender, Name: "RENDER", Value: "/tmp/b.png"}},
		{"TAKEBACK 1,1", Command{Kind: CmdUnknown, Name: "TAKEBACK"}},
		{"   ", Command{Kind: CmdUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			is := is.New(t)
			is.Equal(Parse(tt.line), tt.want)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, line := range []string{
		"START",
		"START big",
		"TURN",
		"TURN 10,invalid",
		"TURN 10",
		"TURN -1,3",
		"TURN 1,2,3",
		"INFO timeout_turn",
		"RENDER",
	} {
		t.Run(line, func(t *testing.T) {
			is := is.New(t)
			cmd := Parse(line)
			is.Equal(cmd.Kind, CmdError)
			is.True(cmd.Err != nil)
		})
	}
}

func TestParseTurnOutOfBounds(t *testing.T) {
	is := is.New(t)
	cmd := Parse("TURN 20,0")
	is.Equal(cmd.Kind, CmdError)
	is.True(errors.Is(cmd.Err, board.ErrOutOfBounds))
}

func TestParseBoardLine(t *testing.T) {
	is := is.New(t)

	bl, err := ParseBoardLine("10,11,2")
	is.NoErr(err)
	is.Equal(bl, BoardLine{X: 10, Y: 11, Field: 2})

	bl, err = ParseBoardLine(" 3, 4 , 1 ")
	is.NoErr(err)
	is.Equal(bl, BoardLine{X: 3, Y: 4, Field: 1})

	bl, err = ParseBoardLine("1,2,3,4")
	is.NoErr(err)
	is.Equal(bl, BoardLine{X: 1, Y: 2, Field: 3})

	for _, done := range []string{"DONE", "done", "dOnE"} {
		bl, err = ParseBoardLine(done)
		is.NoErr(err)
		is.True(bl.Done)
	}

	for _, bad := range []string{"", "10,11", "10,xx,1", "abc", "-1,0,1"} {
		_, err = ParseBoardLine(bad)
		is.True(err != nil)
	}
}
