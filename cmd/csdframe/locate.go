package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/csdframe/internal/pointer"
	"github.com/1broseidon/csdframe/internal/theme"
	"golang.org/x/term"
)

func runLocate(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("locate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	width := fs.Int("width", 200, "Content width")
	height := fs.Int("height", 100, "Content height")
	cell := fs.Int("cell", 0, "Pixels per map cell (default: fit the terminal)")
	noColor := fs.Bool("no-color", false, "Disable colours in the zone map")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: csdframe locate [--width W] [--height H] [X Y]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "With a point, print the decoration zone under it. Without one,")
		fmt.Fprintln(os.Stderr, "draw a map of every zone of the decorated window.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *width <= 0 || *height <= 0 {
		fmt.Fprintln(os.Stderr, "Error: width and height must be positive")
		return 2
	}

	switch fs.NArg() {
	case 0:
		color := !*noColor && isTerminal(out)
		step := *cell
		if step <= 0 {
			step = fitCell(*width, terminalWidth(out))
		}
		renderZoneMap(out, *width, *height, step, color)
		return 0
	case 2:
		x, errX := strconv.ParseFloat(fs.Arg(0), 64)
		y, errY := strconv.ParseFloat(fs.Arg(1), 64)
		if errX != nil || errY != nil {
			fmt.Fprintln(os.Stderr, "Error: X and Y must be numbers")
			return 2
		}
		describePoint(out, x, y, *width, *height)
		return 0
	default:
		fs.Usage()
		return 2
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return 80
	}
	return cols
}

// fitCell picks the smallest cell size that keeps the decorated width within
// cols columns.
func fitCell(width, cols int) int {
	total, _ := theme.AddBorders(width, 1)
	step := 1
	for total/step > max(cols-1, 1) {
		step++
	}
	return step
}

func describePoint(w io.Writer, x, y float64, width, height int) {
	loc := theme.ComputeLocation(x, y, width, height)
	fmt.Fprintf(w, "location: %s\n", loc)
	fmt.Fprintf(w, "cursor:   %s\n", pointer.CursorName(loc))
	switch {
	case loc.IsButton():
		b, _ := loc.Button()
		fmt.Fprintf(w, "press:    %s button\n", b)
	case loc == theme.LocationTopBar:
		fmt.Fprintln(w, "press:    move")
	default:
		if edge, ok := pointer.ResizeEdge(loc); ok {
			fmt.Fprintf(w, "press:    resize (edge %d)\n", edge)
		} else {
			fmt.Fprintln(w, "press:    none")
		}
	}
}

var zoneGlyphs = map[theme.Location]byte{
	theme.LocationTop:         '^',
	theme.LocationBottom:      'v',
	theme.LocationLeft:        '<',
	theme.LocationRight:       '>',
	theme.LocationTopLeft:     '/',
	theme.LocationBottomRight: '/',
	theme.LocationTopRight:    '\\',
	theme.LocationBottomLeft:  '\\',
	theme.LocationTopBar:      '=',
	theme.LocationInside:      '.',
}

var buttonGlyphs = map[theme.Button]byte{
	theme.ButtonMinimize: '_',
	theme.ButtonMaximize: '+',
	theme.ButtonClose:    'x',
}

func zoneGlyph(loc theme.Location) byte {
	if b, ok := loc.Button(); ok {
		return buttonGlyphs[b]
	}
	if g, ok := zoneGlyphs[loc]; ok {
		return g
	}
	return ' '
}

const (
	ansiReset  = "\x1b[0m"
	ansiEdge   = "\x1b[33m"
	ansiBar    = "\x1b[34m"
	ansiButton = "\x1b[1;31m"
	ansiInside = "\x1b[2m"
)

func zoneColor(loc theme.Location) string {
	switch {
	case loc.IsButton():
		return ansiButton
	case loc == theme.LocationTopBar:
		return ansiBar
	case loc == theme.LocationInside:
		return ansiInside
	}
	return ansiEdge
}

// renderZoneMap samples the decorated rectangle every step pixels and
// prints one character per sample, followed by a legend.
func renderZoneMap(w io.Writer, width, height, step int, color bool) {
	total, totalH := theme.AddBorders(width, height)
	var sb strings.Builder
	for y := 0; y < totalH; y += step {
		prev := ""
		for x := 0; x < total; x += step {
			loc := theme.ComputeLocation(float64(x), float64(y), width, height)
			if color {
				if c := zoneColor(loc); c != prev {
					sb.WriteString(c)
					prev = c
				}
			}
			sb.WriteByte(zoneGlyph(loc))
		}
		if color {
			sb.WriteString(ansiReset)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprint(w, sb.String())
	fmt.Fprintf(w, "\n%dx%d content, %dx%d decorated, %dpx per cell\n", width, height, total, totalH, step)
	fmt.Fprintln(w, "^ v < > edges  / \\ corners  = title bar  _ + x minimize maximize close  . content")
}
