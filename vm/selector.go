package vm

import "strings"

// Selectors are message names: unary ("asString"), or keyword forms made of
// colon-terminated parts ("plus:", "ifTrue:ifFalse:"). The number of colons
// is the number of arguments.

// SelectorArity returns the number of arguments a selector takes.
func SelectorArity(selector string) int {
	return strings.Count(selector, ":")
}

// IsValueSelector reports whether selector belongs to the block invocation
// family: value, value:, value:value:, ...
func IsValueSelector(selector string) bool {
	if selector == "value" {
		return true
	}
	if selector == "" {
		return false
	}
	for rest := selector; rest != ""; {
		if !strings.HasPrefix(rest, "value:") {
			return false
		}
		rest = rest[len("value:"):]
	}
	return true
}

// setterName returns the attribute written by a one-argument keyword
// selector ("count:" -> "count").
func setterName(selector string) (string, bool) {
	if len(selector) < 2 || !strings.HasSuffix(selector, ":") {
		return "", false
	}
	name := selector[:len(selector)-1]
	if strings.Contains(name, ":") {
		return "", false
	}
	return name, true
}
