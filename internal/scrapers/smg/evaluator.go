package smg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/titanous/json5"
)

// Evaluator turns the menu script into json of the form
//
//	{"menu": <menuData>, "items": <aData>}
type Evaluator interface {
	Evaluate(ctx context.Context, script string) ([]byte, error)
}

// Expression is what a script evaluating evaluator runs after the menu script.
const Expression = `JSON.stringify({menu: menuData, items: aData})`

// ErrComputed is returned by LiteralEvaluator for values the script computes
// instead of spelling out, they need an evaluator that runs javascript.
var ErrComputed = errors.New("value computed by the script")

// LiteralEvaluator does not run the script, it only reads the values assigned to
// menuData and aData. Both must be object or array literals (json5 syntax plus
// comments and template strings without substitutions), anything else fails with
// ErrComputed.
type LiteralEvaluator struct{}

func (LiteralEvaluator) Evaluate(ctx context.Context, script string) ([]byte, error) {
	// regex literals can confuse the comment scanner, the script is then read as is
	if stripped, err := stripComments(script); err == nil {
		script = stripped
	}
	menuData, err := literalValue(script, "menuData")
	if err != nil {
		return nil, err
	}
	items, err := literalValue(script, "aData")
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"menu":  menuData,
		"items": items,
	})
}

// FallbackEvaluator reads scripts with Literal and only hands the ones that
// compute their values (ErrComputed) to Script, usually a browser.Evaluator.
type FallbackEvaluator struct {
	Literal Evaluator
	Script  Evaluator
}

func (f FallbackEvaluator) Evaluate(ctx context.Context, script string) ([]byte, error) {
	out, err := f.Literal.Evaluate(ctx, script)
	if errors.Is(err, ErrComputed) {
		return f.Script.Evaluate(ctx, script)
	}
	return out, err
}

func literalValue(script, name string) (any, error) {
	literal, err := findLiteral(script, name)
	if err != nil {
		return nil, err
	}
	literal, err = templatesToStrings(literal)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var out any
	err = json5.Unmarshal([]byte(literal), &out)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}

func isQuote(c byte) bool {
	return c == '"' || c == '\'' || c == '`'
}

// stringEnd returns the index just past the string opened by the quote at start.
func stringEnd(s string, start int) (int, error) {
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated string at %d", start)
}

// stripComments removes // and /* */ comments outside of strings, block comments
// become a single space.
func stripComments(s string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(s); {
		switch {
		case isQuote(s[i]):
			end, err := stringEnd(s, i)
			if err != nil {
				return "", err
			}
			out.WriteString(s[i:end])
			i = end
		case strings.HasPrefix(s[i:], "//"):
			nl := strings.IndexByte(s[i:], '\n')
			if nl < 0 {
				return out.String(), nil
			}
			i += nl
		case strings.HasPrefix(s[i:], "/*"):
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return "", fmt.Errorf("unterminated comment at %d", i)
			}
			out.WriteByte(' ')
			i += end + 4
		default:
			out.WriteByte(s[i])
			i++
		}
	}
	return out.String(), nil
}

// templatesToStrings rewrites the template strings of a literal as double quoted
// strings json5 understands.
func templatesToStrings(literal string) (string, error) {
	if !strings.Contains(literal, "`") {
		return literal, nil
	}
	var out strings.Builder
	for i := 0; i < len(literal); {
		if !isQuote(literal[i]) {
			out.WriteByte(literal[i])
			i++
			continue
		}
		end, err := stringEnd(literal, i)
		if err != nil {
			return "", err
		}
		if literal[i] != '`' {
			out.WriteString(literal[i:end])
			i = end
			continue
		}
		quoted, err := templateString(literal[i+1 : end-1])
		if err != nil {
			return "", err
		}
		out.WriteString(quoted)
		i = end
	}
	return out.String(), nil
}

func templateString(body string) (string, error) {
	var out strings.Builder
	out.WriteByte('"')
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			if body[i] == '`' || body[i] == '$' {
				out.WriteByte(body[i])
			} else {
				out.WriteByte('\\')
				out.WriteByte(body[i])
			}
		case c == '$' && i+1 < len(body) && body[i+1] == '{':
			return "", fmt.Errorf("template substitution: %w", ErrComputed)
		case c == '"':
			out.WriteString(`\"`)
		case c == '\n':
			out.WriteString(`\n`)
		case c == '\r':
			out.WriteString(`\r`)
		case c == '\t':
			out.WriteString(`\t`)
		default:
			out.WriteByte(c)
		}
	}
	out.WriteByte('"')
	return out.String(), nil
}

// findLiteral returns the source text of the first object or array literal
// assigned to name. An assignment of anything else is reported as ErrComputed.
func findLiteral(script, name string) (string, error) {
	assignment := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*=\s*`)
	assigned := false
	for _, loc := range assignment.FindAllStringIndex(script, -1) {
		start := loc[1]
		// == and === comparisons
		if start < len(script) && script[start] == '=' {
			continue
		}
		assigned = true
		if start >= len(script) || (script[start] != '{' && script[start] != '[') {
			continue
		}
		end, err := literalEnd(script, start)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return script[start:end], nil
	}
	if assigned {
		return "", fmt.Errorf("%s is not assigned a literal: %w", name, ErrComputed)
	}
	return "", fmt.Errorf("no literal assigned to %s", name)
}

// literalEnd returns the index just past the bracket closing the one at start,
// brackets inside strings do not count.
func literalEnd(s string, start int) (int, error) {
	depth := 0
	for i := start; i < len(s); i++ {
		c := s[i]
		if isQuote(c) {
			end, err := stringEnd(s, i)
			if err != nil {
				return 0, fmt.Errorf("unterminated literal")
			}
			i = end - 1
			continue
		}
		switch c {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, fmt.Errorf("unterminated literal")
}
