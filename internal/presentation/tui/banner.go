package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII banner to w, in amber tones when the terminal supports color.
func PrintBanner(w io.Writer) {
	p := termenv.NewOutput(w).ColorProfile()
	lines := []struct{ text, color string }{
		{"  ___ _   _ _ __ / _| __ _  ___ ___ ", "#fbbf24"},
		{" / __| | | | '__| |_ / _` |/ __/ _ \\", "#f59e0b"},
		{" \\__ \\ |_| | |  |  _| (_| | (_|  __/", "#d97706"},
		{" |___/\\__,_|_|  |_|  \\__,_|\\___\\___|", "#b45309"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
