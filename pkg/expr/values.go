package expr

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/legodom/lego/pkg/reactive"
)

// Func is a callable value. this is the receiver of a method call, or the
// scope's "this" for bare calls.
type Func func(this any, args ...any) (any, error)

// Object lets host values expose named members to expressions.
type Object interface {
	Member(name string) (any, bool)
}

// Setter is implemented by host values whose members can be assigned.
type Setter interface {
	SetMember(name string, v any) error
}

// Truthy applies the usual truthiness rules: nil, false, 0, NaN and "" are
// false; every other value is true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	}
	if n, ok := numeric(v); ok {
		return n != 0
	}
	return true
}

// ToString formats v for display. nil renders as the empty string.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case *reactive.Array:
		return joinItems(x.Raw(), ",")
	case []any:
		return joinItems(x, ",")
	case *reactive.Object:
		return toJSON(x.Raw())
	case map[string]any:
		return toJSON(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}
	if n, ok := numeric(v); ok {
		return formatNumber(n)
	}
	return fmt.Sprint(v)
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[object Object]"
	}
	return string(b)
}

func joinItems(items []any, sep string) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = ToString(it)
	}
	return strings.Join(parts, sep)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ToNumber converts v to a float64. Unconvertible values yield NaN.
func ToNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	if n, ok := numeric(v); ok {
		return n
	}
	return math.NaN()
}

// numeric converts Go integer and float kinds.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// Normalize converts Go numeric kinds to float64 so values from host data
// compare and print consistently.
func Normalize(v any) any {
	if n, ok := numeric(v); ok {
		return n
	}
	return v
}

func typeOf(v any) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case bool:
		return "boolean"
	case string:
		return "string"
	}
	if _, ok := numeric(v); ok {
		return "number"
	}
	if Callable(v) {
		return "function"
	}
	return "object"
}

// Callable reports whether v can be invoked.
func Callable(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case Func, func(this any, args ...any) (any, error):
		return true
	}
	return reflect.ValueOf(v).Kind() == reflect.Func
}

func strictEqual(a, b any) bool {
	a, b = Normalize(a), Normalize(b)
	if fa, ok := a.(float64); ok {
		fb, ok := b.(float64)
		return ok && fa == fb
	}
	return reactive.Same(reactive.Unwrap(a), reactive.Unwrap(b))
}

func looseEqual(a, b any) bool {
	a, b = Normalize(a), Normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch a.(type) {
	case float64, string, bool:
		switch b.(type) {
		case float64, string, bool:
			if reflect.TypeOf(a) == reflect.TypeOf(b) {
				return a == b
			}
			return ToNumber(a) == ToNumber(b)
		}
	}
	return strictEqual(a, b)
}

// call invokes fn with the given receiver and arguments.
func call(fn any, this any, args []any) (any, error) {
	switch f := fn.(type) {
	case Func:
		return f(this, args...)
	case func(this any, args ...any) (any, error):
		return f(this, args...)
	case func(args ...any) any:
		return f(args...), nil
	case func():
		f()
		return nil, nil
	case nil:
		return nil, fmt.Errorf("%w: undefined is not a function", ErrType)
	}
	return callReflect(fn, args)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// callReflect adapts arbitrary Go functions. Arguments are converted to
// parameter types where Go allows it; missing arguments become zero values.
func callReflect(fn any, args []any) (any, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s is not a function", ErrType, typeOf(fn))
	}
	rt := rv.Type()
	n := rt.NumIn()
	in := make([]reflect.Value, 0, max(n, len(args)))
	for i := 0; i < n; i++ {
		pt := rt.In(i)
		if rt.IsVariadic() && i == n-1 {
			et := pt.Elem()
			for _, a := range args[min(i, len(args)):] {
				v, err := convertArg(a, et)
				if err != nil {
					return nil, err
				}
				in = append(in, v)
			}
			break
		}
		var a any
		if i < len(args) {
			a = args[i]
		}
		v, err := convertArg(a, pt)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}

	out := rv.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if rt.Out(0) == errorType {
			err, _ := out[0].Interface().(error)
			return nil, err
		}
		return Normalize(out[0].Interface()), nil
	default:
		var err error
		if last := out[len(out)-1]; rt.Out(len(out)-1) == errorType && !last.IsNil() {
			err = last.Interface().(error)
		}
		return Normalize(out[0].Interface()), err
	}
}

func convertArg(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(a)
	switch {
	case v.Type().AssignableTo(t):
		return v, nil
	case t.Kind() == reflect.String:
		return reflect.ValueOf(ToString(a)).Convert(t), nil
	case isNumberKind(t.Kind()):
		return reflect.ValueOf(ToNumber(a)).Convert(t), nil
	case t.Kind() == reflect.Bool:
		return reflect.ValueOf(Truthy(a)).Convert(t), nil
	case v.Type().ConvertibleTo(t):
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %s as %s", ErrType, typeOf(a), t)
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
