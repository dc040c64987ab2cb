package goboard

import (
	"fmt"
	"strconv"
	"strings"
)

const vertexLetters = "ABCDEFGHJKLMNOPQRSTUVWXYZ" // skips I

// FormatVertex renders v using the GTP convention: a column letter skipping
// 'I', then a 1-indexed row number.
func FormatVertex(v Vertex) string { return formatVertex(v) }

// ParseVertex parses a GTP-style vertex token such as "Q16" into a 0-indexed
// Vertex. "pass" is not a vertex and returns ok=false; the GTP argument
// parser checks for "pass" before calling this function.
func ParseVertex(token string) (v Vertex, ok bool) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if token == "" {
		return Vertex{}, false
	}
	letter := token[0]
	x := strings.IndexByte(vertexLetters, letter)
	if x < 0 {
		return Vertex{}, false
	}
	if len(token) < 2 {
		return Vertex{}, false
	}
	row, err := strconv.Atoi(token[1:])
	if err != nil || row < 1 {
		return Vertex{}, false
	}
	return Vertex{X: x, Y: row - 1}, true
}

// ParseColor parses a GTP color token (B/b/black, W/w/white).
func ParseColor(token string) (Stone, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "b", "black":
		return Black, true
	case "w", "white":
		return White, true
	}
	return Empty, false
}

// FormatColor renders a stone as the single-letter GTP color token.
func FormatColor(s Stone) string {
	switch s {
	case Black:
		return "B"
	case White:
		return "W"
	}
	return fmt.Sprintf("?%d", int(s))
}
