// Package condition evaluates a rule's flat condition map against a
// state.Object: key -> "operator value" pairs that must all hold for
// the rule's condition block to be considered true.
package condition

import (
	"strconv"
	"strings"

	"github.com/rustyeddy/sentinel/placeholder"
	"github.com/rustyeddy/sentinel/state"
)

// operators in longest-match order, so ">=" is tried before ">".
var operators = []string{"==", "!=", ">=", "<=", ">", "<"}

// Map is a rule's condition block as loaded from config: attribute
// scope key -> "operator value" text.
type Map map[string]string

// Eval reports whether every condition in m holds against obj. An
// empty map is defined to be true (§4.1), which combined with an edge
// trigger yields a fire-once-per-new-entity rule.
func Eval(m Map, obj *state.Object, aliases state.AliasTable, warn placeholder.Warner) bool {
	for key, rhs := range m {
		if !evalOne(key, rhs, obj, aliases, warn) {
			return false
		}
	}
	return true
}

func evalOne(key, rhs string, obj *state.Object, aliases state.AliasTable, warn placeholder.Warner) bool {
	op, text := parseRHS(rhs)
	text = placeholder.Resolve(text, obj, aliases, warn)

	left, ok := resolveKey(key, obj, aliases, warn)
	if !ok {
		return false
	}
	return compare(left, op, text)
}

// parseRHS strips leading whitespace and, if present, a leading
// comparison operator (longest match), returning the operator (default
// "==") and the trimmed literal value text.
func parseRHS(rhs string) (op string, value string) {
	s := strings.TrimLeft(rhs, " \t")
	for _, o := range operators {
		if strings.HasPrefix(s, o) {
			return o, strings.TrimSpace(s[len(o):])
		}
	}
	return "==", strings.TrimSpace(s)
}

// resolveKey implements the three key scopes of §4.1: previous.<attr>,
// <alias>.<attr>, and bare <attr>. Every lookup of an unknown alias
// calls warn; repeated warnings for the same alias are not
// deduplicated here or by the Runner's warn callback.
func resolveKey(key string, obj *state.Object, aliases state.AliasTable, warn placeholder.Warner) (any, bool) {
	if rest, ok := strings.CutPrefix(key, "previous."); ok {
		return obj.PreviousAttr(rest)
	}
	if alias, attr, found := strings.Cut(key, "."); found {
		if !aliases.Has(alias) {
			if warn != nil {
				warn("condition: unknown device alias " + alias)
			}
			return nil, false
		}
		return obj.AliasAttr(alias, attr)
	}
	return obj.Attr(key)
}

// compare applies §4.1's type-coercion rules: the left side's native
// type governs how the right-hand text is interpreted.
func compare(left any, op, rhs string) bool {
	switch l := left.(type) {
	case bool:
		return compareBool(l, op, rhs)
	case string:
		return compareString(l, op, rhs)
	case nil:
		return false
	default:
		if f, ok := toFloat(left); ok {
			return compareFloat(f, op, rhs)
		}
		return false
	}
}

// parseBoolLiteral accepts only the exact case-insensitive literals
// §4.1 names -- "true" and "false" -- unlike strconv.ParseBool, which
// also accepts "1", "t", "0", "f" and would let a condition like
// isOn: "1" silently coerce as a boolean match.
func parseBoolLiteral(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func compareBool(l bool, op, rhs string) bool {
	r, ok := parseBoolLiteral(rhs)
	if !ok {
		return false
	}
	switch op {
	case "==":
		return l == r
	case "!=":
		return l != r
	default:
		return false
	}
}

func compareString(l, op, rhs string) bool {
	switch op {
	case "==":
		return l == rhs
	case "!=":
		return l != rhs
	case ">":
		return l > rhs
	case "<":
		return l < rhs
	case ">=":
		return l >= rhs
	case "<=":
		return l <= rhs
	}
	return false
}

func compareFloat(l float64, op, rhs string) bool {
	r, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false
	}
	switch op {
	case "==":
		return l == r
	case "!=":
		return l != r
	case ">":
		return l > r
	case "<":
		return l < r
	case ">=":
		return l >= r
	case "<=":
		return l <= r
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
