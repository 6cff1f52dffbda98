package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`       _                                       `,
	`   ___| | ___  __ _ _ __ __ _ _ __   ___ ___  `,
	`  / __| |/ _ \/ _' | '__/ _' | '_ \ / __/ _ \ `,
	` | (__| |  __/ (_| | | | (_| | | | | (_|  __/ `,
	`  \___|_|\___|\__,_|_|  \__,_|_| |_|\___\___| `,
}

var bannerColors = []string{"#0ea5e9", "#14b8a6", "#10b981", "#22c55e", "#84cc16"}

// PrintBanner writes the terminal banner with a green gradient.
func PrintBanner(w io.Writer, p termenv.Profile, version string) {
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, p.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, p.String("  Texas record clearing intake "+version).Faint())
	fmt.Fprintln(w)
}
