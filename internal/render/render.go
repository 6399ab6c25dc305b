// Package render draws a board as a PNG image, for debugging games offline.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/pbrain/internal/board"
)

// DefaultCellSize is the side of one board cell in pixels.
const DefaultCellSize = 24

const minCellSize = 8

// Colours
const (
	backgroundColor = "#e3c16f"
	gridColor       = "#5c4a1e"
	mineColor       = "#111111"
	opponentColor   = "#f4f4f4"
	forbiddenColor  = "#b22222"
)

// SVG returns the board as an SVG document. One cell of margin is left on the
// top and left edges for coordinate labels.
func SVG(b *board.Board, cellSize int) string {
	cell := float64(cellSize)
	side := cell * (board.Size + 1)

	var s strings.Builder
	fmt.Fprintf(&s, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`,
		side, side, side, side)
	fmt.Fprintf(&s, `<rect x="0" y="0" width="%g" height="%g" fill="%s"/>`, side, side, backgroundColor)

	// Grid lines run through cell centres.
	first := cell * 1.5
	last := cell * (board.Size + 0.5)
	for i := 0; i < board.Size; i++ {
		p := first + float64(i)*cell
		fmt.Fprintf(&s, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="1"/>`,
			p, first, p, last, gridColor)
		fmt.Fprintf(&s, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="1"/>`,
			first, p, last, p, gridColor)
	}

	r := cell * 0.42
	for sq := board.Square(0); sq < board.NumCells; sq++ {
		cx := first + float64(sq.X())*cell
		cy := first + float64(sq.Y())*cell
		switch b.At(sq) {
		case board.Mine:
			fmt.Fprintf(&s, `<circle cx="%g" cy="%g" r="%g" fill="%s"/>`, cx, cy, r, mineColor)
		case board.Opponent:
			fmt.Fprintf(&s, `<circle cx="%g" cy="%g" r="%g" fill="%s" stroke="%s" stroke-width="1"/>`,
				cx, cy, r, opponentColor, mineColor)
		case board.Forbidden:
			d := r * 0.7
			fmt.Fprintf(&s, `<path d="M%g %gL%g %gM%g %gL%g %g" stroke="%s" stroke-width="%g" fill="none"/>`,
				cx-d, cy-d, cx+d, cy+d, cx-d, cy+d, cx+d, cy-d, forbiddenColor, cell/8)
		}
	}

	s.WriteString(`</svg>`)
	return s.String()
}

// Image rasterizes the board.
func Image(b *board.Board, cellSize int) (*image.RGBA, error) {
	if cellSize < minCellSize {
		cellSize = minCellSize
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(SVG(b, cellSize)))
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}

	side := cellSize * (board.Size + 1)
	icon.SetTarget(0, 0, float64(side), float64(side))

	rgba := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(rgba, rgba.Bounds(), image.White, image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(side, side, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(side, side, scanner)
	icon.Draw(raster, 1.0)

	drawLabels(rgba, cellSize)
	return rgba, nil
}

// drawLabels writes column numbers along the top and row numbers down the left.
func drawLabels(dst draw.Image, cellSize int) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()
	for i := 0; i < board.Size; i++ {
		label := strconv.Itoa(i)
		width := d.MeasureString(label).Ceil()
		centre := cellSize + i*cellSize + cellSize/2

		d.Dot = fixed.P(centre-width/2, (cellSize+ascent)/2)
		d.DrawString(label)

		d.Dot = fixed.P((cellSize-width)/2, centre+ascent/2)
		d.DrawString(label)
	}
}

// WritePNG renders the board and encodes it as PNG to w.
func WritePNG(w io.Writer, b *board.Board, cellSize int) error {
	img, err := Image(b, cellSize)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WritePNGFile renders the board to a PNG file at path.
func WritePNGFile(path string, b *board.Board, cellSize int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, b, cellSize); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
