package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the shrub banner to w, colored when w supports it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{`      _               _     `, "#4ade80"},
		{`  ___| |__  _ __ _   _| |__  `, "#34d399"},
		{` / __| '_ \| '__| | | | '_ \ `, "#2dd4bf"},
		{` \__ \ | | | |  | |_| | |_) |`, "#22d3ee"},
		{` |___/_| |_|_|   \__,_|_.__/ `, "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String(" v"+version).Faint())
	fmt.Fprintln(w)
}
