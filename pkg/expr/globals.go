package expr

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/legodom/lego/pkg/reactive"
)

// Globals returns a read-only scope with the standard helpers available to
// every expression: Math, JSON, Object, Array, String, Number, Boolean,
// parseInt, parseFloat, isNaN and Date.now.
func Globals() Scope { return ReadOnly(globals) }

type namespace map[string]any

func (n namespace) Member(name string) (any, bool) {
	v, ok := n[name]
	return v, ok
}

func mathFn(f func(float64) float64) Func {
	return method(func(args []any) (any, error) { return f(ToNumber(arg(args, 0))), nil })
}

func fold(f func(a, b float64) float64, init float64) Func {
	return method(func(args []any) (any, error) {
		acc := init
		for _, a := range args {
			acc = f(acc, ToNumber(a))
		}
		return acc, nil
	})
}

var globals = Vars{
	"Math": namespace{
		"PI":    math.Pi,
		"abs":   mathFn(math.Abs),
		"ceil":  mathFn(math.Ceil),
		"floor": mathFn(math.Floor),
		"round": mathFn(func(f float64) float64 { return math.Floor(f + 0.5) }),
		"sqrt":  mathFn(math.Sqrt),
		"trunc": mathFn(math.Trunc),
		"min":   fold(math.Min, math.Inf(1)),
		"max":   fold(math.Max, math.Inf(-1)),
		"pow": method(func(args []any) (any, error) {
			return math.Pow(ToNumber(arg(args, 0)), ToNumber(arg(args, 1))), nil
		}),
	},
	"JSON": namespace{
		"stringify": method(func(args []any) (any, error) {
			return toJSON(reactive.Unwrap(arg(args, 0))), nil
		}),
	},
	"Object": namespace{
		"keys": method(func(args []any) (any, error) {
			var keys []string
			switch o := arg(args, 0).(type) {
			case *reactive.Object:
				keys = o.Keys()
			case map[string]any:
				for k := range o {
					keys = append(keys, k)
				}
				sort.Strings(keys)
			}
			out := make([]any, len(keys))
			for i, k := range keys {
				out[i] = k
			}
			return out, nil
		}),
	},
	"Array": namespace{
		"isArray": method(func(args []any) (any, error) {
			switch reactive.Unwrap(arg(args, 0)).(type) {
			case []any:
				return true, nil
			}
			return false, nil
		}),
	},
	"String":  method(func(args []any) (any, error) { return ToString(arg(args, 0)), nil }),
	"Number":  method(func(args []any) (any, error) { return ToNumber(arg(args, 0)), nil }),
	"Boolean": method(func(args []any) (any, error) { return Truthy(arg(args, 0)), nil }),
	"isNaN":   method(func(args []any) (any, error) { return math.IsNaN(ToNumber(arg(args, 0))), nil }),
	"parseFloat": method(func(args []any) (any, error) {
		return leadingFloat(strings.TrimSpace(ToString(arg(args, 0)))), nil
	}),
	"parseInt": method(func(args []any) (any, error) {
		s := strings.TrimSpace(ToString(arg(args, 0)))
		end := 0
		if end < len(s) && (s[end] == '-' || s[end] == '+') {
			end++
		}
		for end < len(s) && isDigit(s[end]) {
			end++
		}
		n, err := strconv.ParseInt(s[:end], 10, 64)
		if err != nil {
			return math.NaN(), nil
		}
		return float64(n), nil
	}),
	"Date": namespace{
		"now": method(func([]any) (any, error) { return float64(time.Now().UnixMilli()), nil }),
	},
}

// leadingFloat parses the longest numeric prefix of s.
func leadingFloat(s string) float64 {
	for end := len(s); end > 0; end-- {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return f
		}
	}
	return math.NaN()
}
