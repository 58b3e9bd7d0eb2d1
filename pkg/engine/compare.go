package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// looselyEqual compares a deal attribute against a condition value with the
// coercion rules the automation builder relies on: "1000" equals 1000, and
// enum-ish values compare as strings. Nil equals nil and nothing else.
func looselyEqual(left, right any) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}

	if leftNum, lok := toNumber(left); lok {
		if rightNum, rok := toNumber(right); rok {
			return leftNum == rightNum
		}
	}

	return toString(left) == toString(right)
}

// compareNumeric coerces both sides to float64; a side that cannot be
// coerced makes the comparison false.
func compareNumeric(left, right any) (leftNum, rightNum float64, ok bool) {
	leftNum, lok := toNumber(left)
	rightNum, rok := toNumber(right)

	return leftNum, rightNum, lok && rok
}

// looselyOrdered orders two values for GREATER_THAN / LESS_THAN: two
// strings compare lexicographically, any other pair compares numerically
// after coercion. Incomparable pairs report ok=false.
func looselyOrdered(left, right any) (cmp int, ok bool) {
	leftStr, lIsStr := left.(string)
	rightStr, rIsStr := right.(string)

	if lIsStr && rIsStr {
		return strings.Compare(leftStr, rightStr), true
	}

	leftNum, rightNum, ok := compareNumeric(left, right)
	if !ok {
		return 0, false
	}

	switch {
	case leftNum < rightNum:
		return -1, true
	case leftNum > rightNum:
		return 1, true
	default:
		return 0, true
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}
