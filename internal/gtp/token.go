package gtp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gongoengine/gongo/internal/goboard"
)

// ArgKind is one of the literal kinds a command Signature can require,
// per §4.J's "ordered list of expected literal kinds" table.
type ArgKind int

const (
	KindInteger ArgKind = iota
	KindFloat
	KindColor
	KindVertex
	KindString
	KindMove
)

func (k ArgKind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindColor:
		return "Color"
	case KindVertex:
		return "Vertex"
	case KindString:
		return "String"
	case KindMove:
		return "Move"
	}
	return fmt.Sprintf("ArgKind(%d)", int(k))
}

// Arg is a single parsed command-line token, tagged by the kind its
// signature slot required. Only the fields matching Kind are meaningful;
// a KindVertex arg with Pass set carries no Vertex.
type Arg struct {
	Kind   ArgKind
	Int    int
	Float  float64
	Color  goboard.Stone
	Vertex goboard.Vertex
	Pass   bool
	Resign bool
	Text   string
}

// Signature is the ordered list of kinds a command overload expects.
// KindMove consumes two raw tokens (a color, then a vertex or "pass" or
// "resign") and produces one Arg — a convenience for user extensions that
// want a ready-made move rather than combining Color+Vertex themselves.
type Signature []ArgKind

func (s Signature) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = k.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// matchSignature attempts to parse every raw token against sig in order,
// consuming the whole token list exactly (no leftover, no shortfall).
func matchSignature(sig Signature, tokens []string) ([]Arg, bool) {
	args := make([]Arg, 0, len(sig))
	i := 0
	for _, k := range sig {
		a, n, ok := parseArg(k, tokens, i)
		if !ok {
			return nil, false
		}
		args = append(args, a)
		i += n
	}
	if i != len(tokens) {
		return nil, false
	}
	return args, true
}

func parseArg(kind ArgKind, tokens []string, i int) (Arg, int, bool) {
	switch kind {
	case KindInteger:
		if i >= len(tokens) {
			return Arg{}, 0, false
		}
		n, err := strconv.Atoi(tokens[i])
		if err != nil {
			return Arg{}, 0, false
		}
		return Arg{Kind: KindInteger, Int: n}, 1, true

	case KindFloat:
		if i >= len(tokens) {
			return Arg{}, 0, false
		}
		f, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return Arg{}, 0, false
		}
		return Arg{Kind: KindFloat, Float: f}, 1, true

	case KindColor:
		if i >= len(tokens) {
			return Arg{}, 0, false
		}
		c, ok := goboard.ParseColor(tokens[i])
		if !ok {
			return Arg{}, 0, false
		}
		return Arg{Kind: KindColor, Color: c}, 1, true

	case KindVertex:
		if i >= len(tokens) {
			return Arg{}, 0, false
		}
		if strings.EqualFold(tokens[i], "pass") {
			return Arg{Kind: KindVertex, Pass: true}, 1, true
		}
		v, ok := goboard.ParseVertex(tokens[i])
		if !ok {
			return Arg{}, 0, false
		}
		return Arg{Kind: KindVertex, Vertex: v}, 1, true

	case KindString:
		if i >= len(tokens) {
			return Arg{}, 0, false
		}
		return Arg{Kind: KindString, Text: tokens[i]}, 1, true

	case KindMove:
		if i+1 >= len(tokens) {
			return Arg{}, 0, false
		}
		c, ok := goboard.ParseColor(tokens[i])
		if !ok {
			return Arg{}, 0, false
		}
		switch {
		case strings.EqualFold(tokens[i+1], "pass"):
			return Arg{Kind: KindMove, Color: c, Pass: true}, 2, true
		case strings.EqualFold(tokens[i+1], "resign"):
			return Arg{Kind: KindMove, Color: c, Resign: true}, 2, true
		default:
			v, ok := goboard.ParseVertex(tokens[i+1])
			if !ok {
				return Arg{}, 0, false
			}
			return Arg{Kind: KindMove, Color: c, Vertex: v}, 2, true
		}
	}
	return Arg{}, 0, false
}

// parseLine splits one input line into an optional leading numeric id,
// a command name, and its raw argument tokens. A '#' outside this tokenizer
// marks the rest of the line as a comment, per GTP. A blank or
// comment-only line yields an empty name.
func parseLine(line string) (id *int, name string, args []string) {
	if h := strings.IndexByte(line, '#'); h >= 0 {
		line = line[:h]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, "", nil
	}
	if n, err := strconv.Atoi(fields[0]); err == nil && n >= 0 {
		idVal := n
		id = &idVal
		fields = fields[1:]
		if len(fields) == 0 {
			return id, "", nil
		}
	}
	return id, fields[0], fields[1:]
}
