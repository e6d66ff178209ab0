package common

import (
	"fmt"
	"io"
	"strings"
)

const (
	// Default separator widths
	DefaultWidth = 90
	NarrowWidth  = 60
)

// WriteSeparator writes a separator line with the specified character and width
func WriteSeparator(w io.Writer, char string, width int) {
	fmt.Fprintln(w, strings.Repeat(char, width))
}

// WriteHeader writes a formatted header with title and separators
func WriteHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	WriteSeparator(w, "=", DefaultWidth)
	fmt.Fprintln(w, title)
	WriteSeparator(w, "=", DefaultWidth)
}

// WriteFooter writes a formatted footer with an optional trailing message
func WriteFooter(w io.Writer, message string) {
	WriteSeparator(w, "=", DefaultWidth)
	if message != "" {
		fmt.Fprintln(w, message)
	}
}

// WriteBoxSeparator writes a box-drawing separator line (for sub-sections)
func WriteBoxSeparator(w io.Writer, width int) {
	fmt.Fprintln(w, "├"+strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└ "
	}
	return "│ "
}
