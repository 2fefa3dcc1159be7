package output

import (
	"fmt"
	"io"

	figure "github.com/common-nighthawk/go-figure"
)

// PrintBanner prints the startup ASCII banner for interactive runs.
func PrintBanner(w io.Writer, version string) {
	fig := figure.NewFigure("pythaw", "slant", true)
	fmt.Fprintln(w, fig.String())
	fmt.Fprintf(w, "reachability analyzer for serverless handlers  v%s\n\n", version)
}

// ShouldShowBanner reports whether the interactive banner belongs on
// this run: only on a real terminal, and only when the user hasn't
// opted out.
func ShouldShowBanner(isTTY bool, noBanner bool) bool {
	return isTTY && !noBanner
}
