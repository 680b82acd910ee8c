package phttp

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

type valueKind int

const (
	scalarKind valueKind = iota
	flagKind
	multiKind
)

// Value is the decoded form of one query-string key. A key with a single
// "key=value" occurrence is a scalar, a bare "key" without '=' is a presence
// flag, and a key that occurs multiple times accumulates into a multi value.
type Value struct {
	kind valueKind
	str  string
	list []string
}

// ScalarValue returns a single-string value.
func ScalarValue(s string) Value { return Value{kind: scalarKind, str: s} }

// FlagValue returns a presence-flag value, the decoding of a bare key
// without '='.
func FlagValue() Value { return Value{kind: flagKind} }

// MultiValue returns a value holding multiple strings in order.
func MultiValue(vals ...string) Value { return Value{kind: multiKind, list: vals} }

// IsFlag reports whether the value is a presence flag.
func (v Value) IsFlag() bool { return v.kind == flagKind }

// Scalar returns the single string of a scalar value. The second return is
// false for flags and multi values.
func (v Value) Scalar() (string, bool) {
	if v.kind != scalarKind {
		return "", false
	}

	return v.str, true
}

// Strings returns all string occurrences of the value in decoding order. A
// flag has none and a scalar has exactly one.
func (v Value) Strings() []string {
	switch v.kind {
	case flagKind:
		return nil
	case scalarKind:
		return []string{v.str}
	default:
		return v.list
	}
}

// widen folds the next occurrence of the same key into the value. String
// occurrences accumulate in order; a flag occurrence after a string value
// carries no string and leaves the accumulated strings unchanged.
func (v Value) widen(next Value) Value {
	if next.kind == flagKind {
		return v
	}

	switch v.kind {
	case flagKind:
		return MultiValue(next.str)
	case scalarKind:
		return MultiValue(v.str, next.str)
	default:
		v.list = append(v.list, next.str)
		return v
	}
}

// Values maps decoded query-string keys to their polymorphic values.
type Values map[string]Value

// Get returns the first string occurrence for the key and whether the key is
// present at all. For a pure presence flag it returns "" and true.
func (vs Values) Get(key string) (string, bool) {
	v, ok := vs[key]
	if !ok {
		return "", false
	}

	ss := v.Strings()
	if len(ss) == 0 {
		return "", true
	}

	return ss[0], true
}

// UnquotePlus decodes URL-encoded data: '+' becomes a space and every %XX
// escape decodes independently to the code point named by its two hex
// digits. Decoding policy for malformed input, kept deterministic: an escape
// with two valid hex digits decodes, a trailing escape with fewer than two
// characters is silently dropped, and any other malformed escape returns
// [ErrInvalidEscape].
func UnquotePlus(s string) (string, error) {
	s = strings.ReplaceAll(s, "+", " ")
	if !strings.Contains(s, "%") {
		return s, nil
	}

	parts := strings.Split(s, "%")

	var b strings.Builder
	b.WriteString(parts[0])

	for i, chunk := range parts[1:] {
		if len(chunk) < 2 {
			if i == len(parts)-2 {
				break // incomplete escape at end of input
			}

			return "", errors.Wrapf(ErrInvalidEscape, "%%%s", chunk)
		}

		code, err := strconv.ParseUint(chunk[:2], 16, 8)
		if err != nil {
			return "", errors.Wrapf(ErrInvalidEscape, "%%%s", chunk[:2])
		}

		b.WriteRune(rune(code))
		b.WriteString(chunk[2:])
	}

	return b.String(), nil
}

// ParseQuery decodes a URL-encoded query or form string. Pairs split on '&',
// each pair on the first '='; both keys and values pass through
// [UnquotePlus]. Empty input yields an empty map.
func ParseQuery(s string) (Values, error) {
	res := Values{}
	if s == "" {
		return res, nil
	}

	for _, pair := range strings.Split(s, "&") {
		rawKey, rawVal, hasVal := strings.Cut(pair, "=")

		key, err := UnquotePlus(rawKey)
		if err != nil {
			return nil, err
		}

		val := FlagValue()
		if hasVal {
			dec, err := UnquotePlus(rawVal)
			if err != nil {
				return nil, err
			}

			val = ScalarValue(dec)
		}

		if old, ok := res[key]; ok {
			res[key] = old.widen(val)
		} else {
			res[key] = val
		}
	}

	return res, nil
}
