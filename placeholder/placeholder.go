// Package placeholder resolves "{path}" tokens against a state.Object,
// the same scoping rules the condition evaluator uses for its
// left-hand keys. It is applied to every string leaf of an action's
// configuration before the action executes.
package placeholder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rustyeddy/sentinel/state"
)

var pathToken = func() func(s string) (start, end int, path string, ok bool) {
	return func(s string) (int, int, string, bool) {
		start := strings.IndexByte(s, '{')
		if start < 0 {
			return 0, 0, "", false
		}
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			return 0, 0, "", false
		}
		end += start
		return start, end, s[start+1 : end], true
	}
}()

// Warner receives a message each time a placeholder fails to resolve.
// The automation handler supplies a logger-backed implementation; tests
// may supply a no-op.
type Warner func(msg string)

// Resolve substitutes every "{path}" token in text. An unresolvable
// token is replaced with the empty string and reported to warn.
// Resolution is not recursive: substituted text is never re-scanned.
func Resolve(text string, obj *state.Object, aliases state.AliasTable, warn Warner) string {
	if !strings.ContainsRune(text, '{') {
		return text
	}
	var b strings.Builder
	rest := text
	for {
		start, end, path, ok := pathToken(rest)
		if !ok {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		val, resolved := lookup(path, obj, aliases)
		if !resolved {
			if warn != nil {
				warn(fmt.Sprintf("placeholder: unresolved path %q", path))
			}
		} else {
			b.WriteString(stringify(val))
		}
		rest = rest[end+1:]
	}
	return b.String()
}

// ResolveValue applies Resolve to every string leaf of a structured
// action-config value. Maps and slices are walked recursively; map
// keys are left untouched, only values are formatted.
func ResolveValue(v any, obj *state.Object, aliases state.AliasTable, warn Warner) any {
	switch t := v.(type) {
	case string:
		return Resolve(t, obj, aliases, warn)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = ResolveValue(vv, obj, aliases, warn)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = ResolveValue(vv, obj, aliases, warn)
		}
		return out
	default:
		return v
	}
}

// lookup resolves a bare path (condition key scoping minus the
// operator) to a value, following §4.2's precedence for names with no
// dot: previous-prefixed, then triggering attribute, then alias.
func lookup(path string, obj *state.Object, aliases state.AliasTable) (any, bool) {
	if rest, ok := strings.CutPrefix(path, "previous."); ok {
		return obj.PreviousAttr(rest)
	}
	if !strings.Contains(path, ".") {
		if v, ok := obj.Attr(path); ok {
			return v, true
		}
		if aliases.Has(path) {
			if key, ok := aliases.Key(path); ok {
				return key, true
			}
		}
		return nil, false
	}
	alias, attr, _ := strings.Cut(path, ".")
	return obj.AliasAttr(alias, attr)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
