package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-torchgen/pkg/graph"
)

// pyValue formats a document value as Python source. Strings are emitted
// verbatim (they usually carry numbers or identifiers such as "18" or "b0");
// use pyString where a quoted literal is required.
func pyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		return pyBool(val)
	case string:
		return singleLine(val)
	default:
		if f, ok := graph.ToFloat(val); ok {
			return pyNumber(f)
		}
		return singleLine(fmt.Sprint(val))
	}
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func pyNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprintf("float('%v')", f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	if abs := math.Abs(f); abs < 1e-6 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var pyStringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

func pyString(s string) string {
	return "'" + pyStringEscaper.Replace(s) + "'"
}

// pyPadding quotes string paddings ("same", "valid") and leaves numbers bare.
func pyPadding(v any) string {
	if s, ok := v.(string); ok {
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return strings.TrimSpace(s)
		}
		return pyString(s)
	}
	return pyValue(v)
}

func singleLine(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }), " ")
}

// indent prefixes every non-blank line of code with n spaces. Blank lines are
// left empty.
func indent(code string, n int) string {
	if code == "" {
		return ""
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}

// commentOut prefixes every line with "# ".
func commentOut(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = "# " + line
	}
	return strings.Join(lines, "\n")
}

// params reads node parameters with per-emitter defaults.
type params struct {
	node graph.Node
}

func (p params) val(key string, def any) string {
	return pyValue(p.node.Value(key, def))
}

func (p params) flag(key string, def bool) string {
	return pyBool(p.node.Bool(key, def))
}

func (p params) padding(key string, def any) string {
	return pyPadding(p.node.Value(key, def))
}

func (p params) quoted(key, def string) string {
	return pyString(p.node.String(key, def))
}

func (p params) raw(key, def string) string {
	return singleLine(p.node.String(key, def))
}

// optional returns ", name=value" when the parameter carries a non-nil value.
func (p params) optional(key, name string) string {
	v := p.node.Value(key, nil)
	if v == nil {
		return ""
	}
	return fmt.Sprintf(", %s=%s", name, pyValue(v))
}
