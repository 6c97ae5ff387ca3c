package expr

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/legodom/lego/pkg/reactive"
)

// member reads obj[key].
func member(obj, key any) (any, error) {
	name := ToString(key)
	switch o := obj.(type) {
	case nil:
		return nil, fmt.Errorf("%w: cannot read %q of undefined", ErrType, name)
	case *reactive.Object:
		return o.Get(name), nil
	case *reactive.Array:
		if i, ok := arrayIndex(key); ok {
			return o.Index(i), nil
		}
		if name == "length" {
			return float64(o.Len()), nil
		}
		return arrayMethod(o, name), nil
	case []any:
		if i, ok := arrayIndex(key); ok {
			if i < len(o) {
				return o[i], nil
			}
			return nil, nil
		}
		if name == "length" {
			return float64(len(o)), nil
		}
		return sliceMethod(o, name), nil
	case map[string]any:
		return o[name], nil
	case map[string]string:
		if v, ok := o[name]; ok {
			return v, nil
		}
		return nil, nil
	case string:
		if i, ok := arrayIndex(key); ok {
			r := []rune(o)
			if i < len(r) {
				return string(r[i]), nil
			}
			return nil, nil
		}
		if name == "length" {
			return float64(len([]rune(o))), nil
		}
		return stringMethod(o, name), nil
	case float64:
		return numberMethod(o, name), nil
	case bool:
		return nil, nil
	case Object:
		v, _ := o.Member(name)
		return v, nil
	}
	return reflectMember(obj, name), nil
}

func arrayIndex(key any) (int, bool) {
	switch k := key.(type) {
	case float64:
		if k >= 0 && k == math.Trunc(k) {
			return int(k), true
		}
	case string:
		if i, err := strconv.Atoi(k); err == nil && i >= 0 {
			return i, true
		}
	}
	return 0, false
}

// reflectMember exposes exported struct fields and string-keyed maps of
// host values.
func reflectMember(obj any, name string) any {
	rv := reflect.ValueOf(obj)
	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface()
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		f := rv.FieldByName(name)
		if f.IsValid() && f.CanInterface() {
			return Normalize(f.Interface())
		}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if v.IsValid() {
				return Normalize(v.Interface())
			}
		}
	case reflect.Slice:
		if name == "length" {
			return float64(rv.Len())
		}
	}
	return nil
}

// setMember writes obj[key] = v.
func setMember(obj, key, v any) error {
	name := ToString(key)
	switch o := obj.(type) {
	case nil:
		return fmt.Errorf("%w: cannot set %q of undefined", ErrType, name)
	case *reactive.Object:
		o.Set(name, v)
		return nil
	case *reactive.Array:
		if i, ok := arrayIndex(key); ok {
			o.SetIndex(i, v)
			return nil
		}
		if name == "length" {
			n := int(ToNumber(v))
			if n < o.Len() && n >= 0 {
				o.Splice(n, o.Len()-n)
			}
			return nil
		}
	case map[string]any:
		o[name] = reactive.Unwrap(v)
		return nil
	case []any:
		if i, ok := arrayIndex(key); ok && i < len(o) {
			o[i] = reactive.Unwrap(v)
			return nil
		}
	case Setter:
		return o.SetMember(name, v)
	}
	return fmt.Errorf("%w: cannot set %q of %s", ErrType, name, typeOf(obj))
}

func method(fn func(args []any) (any, error)) Func {
	return func(_ any, args ...any) (any, error) { return fn(args) }
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func intArg(args []any, i, def int) int {
	if i >= len(args) || args[i] == nil {
		return def
	}
	f := ToNumber(args[i])
	if math.IsNaN(f) {
		return def
	}
	return int(f)
}

// relIndex resolves a possibly negative index against length n.
func relIndex(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}

func arrayMethod(a *reactive.Array, name string) any {
	switch name {
	case "push":
		return method(func(args []any) (any, error) { return float64(a.Push(args...)), nil })
	case "pop":
		return method(func([]any) (any, error) { return a.Pop(), nil })
	case "shift":
		return method(func([]any) (any, error) {
			removed := a.Splice(0, 1)
			if len(removed) == 0 {
				return nil, nil
			}
			return removed[0], nil
		})
	case "unshift":
		return method(func(args []any) (any, error) {
			a.Splice(0, 0, args...)
			return float64(a.Len()), nil
		})
	case "splice":
		return method(func(args []any) (any, error) {
			start := intArg(args, 0, 0)
			count := intArg(args, 1, a.Len())
			var insert []any
			if len(args) > 2 {
				insert = args[2:]
			}
			return a.Splice(start, count, insert...), nil
		})
	case "indexOf":
		return method(func(args []any) (any, error) { return float64(a.IndexOf(arg(args, 0))), nil })
	case "includes":
		return method(func(args []any) (any, error) { return a.IndexOf(arg(args, 0)) >= 0, nil })
	}
	if fn := sliceMethod(a.Raw(), name); fn != nil {
		return fn
	}
	return nil
}

// sliceMethod provides the non-mutating array methods.
func sliceMethod(s []any, name string) any {
	switch name {
	case "join":
		return method(func(args []any) (any, error) {
			sep := ","
			if v := arg(args, 0); v != nil {
				sep = ToString(v)
			}
			return joinItems(s, sep), nil
		})
	case "indexOf":
		return method(func(args []any) (any, error) {
			for i, x := range s {
				if strictEqual(x, arg(args, 0)) {
					return float64(i), nil
				}
			}
			return -1.0, nil
		})
	case "includes":
		return method(func(args []any) (any, error) {
			for _, x := range s {
				if strictEqual(x, arg(args, 0)) {
					return true, nil
				}
			}
			return false, nil
		})
	case "slice":
		return method(func(args []any) (any, error) {
			start := relIndex(intArg(args, 0, 0), len(s))
			end := relIndex(intArg(args, 1, len(s)), len(s))
			if end < start {
				end = start
			}
			return append([]any(nil), s[start:end]...), nil
		})
	case "concat":
		return method(func(args []any) (any, error) {
			out := append([]any(nil), s...)
			for _, a := range args {
				switch x := reactive.Unwrap(a).(type) {
				case []any:
					out = append(out, x...)
				default:
					out = append(out, x)
				}
			}
			return out, nil
		})
	case "at":
		return method(func(args []any) (any, error) {
			i := intArg(args, 0, 0)
			if i < 0 {
				i += len(s)
			}
			if i < 0 || i >= len(s) {
				return nil, nil
			}
			return s[i], nil
		})
	}
	return nil
}

func stringMethod(s, name string) any {
	switch name {
	case "toUpperCase":
		return method(func([]any) (any, error) { return strings.ToUpper(s), nil })
	case "toLowerCase":
		return method(func([]any) (any, error) { return strings.ToLower(s), nil })
	case "trim":
		return method(func([]any) (any, error) { return strings.TrimSpace(s), nil })
	case "includes":
		return method(func(args []any) (any, error) { return strings.Contains(s, ToString(arg(args, 0))), nil })
	case "startsWith":
		return method(func(args []any) (any, error) { return strings.HasPrefix(s, ToString(arg(args, 0))), nil })
	case "endsWith":
		return method(func(args []any) (any, error) { return strings.HasSuffix(s, ToString(arg(args, 0))), nil })
	case "indexOf":
		return method(func(args []any) (any, error) {
			i := strings.Index(s, ToString(arg(args, 0)))
			if i < 0 {
				return -1.0, nil
			}
			return float64(len([]rune(s[:i]))), nil
		})
	case "slice", "substring":
		return method(func(args []any) (any, error) {
			r := []rune(s)
			start := relIndex(intArg(args, 0, 0), len(r))
			end := relIndex(intArg(args, 1, len(r)), len(r))
			if end < start {
				end = start
			}
			return string(r[start:end]), nil
		})
	case "split":
		return method(func(args []any) (any, error) {
			parts := strings.Split(s, ToString(arg(args, 0)))
			out := make([]any, len(parts))
			for i, p := range parts {
				out[i] = p
			}
			return out, nil
		})
	case "replace":
		return method(func(args []any) (any, error) {
			return strings.Replace(s, ToString(arg(args, 0)), ToString(arg(args, 1)), 1), nil
		})
	case "replaceAll":
		return method(func(args []any) (any, error) {
			return strings.ReplaceAll(s, ToString(arg(args, 0)), ToString(arg(args, 1))), nil
		})
	case "charAt":
		return method(func(args []any) (any, error) {
			r := []rune(s)
			i := intArg(args, 0, 0)
			if i < 0 || i >= len(r) {
				return "", nil
			}
			return string(r[i]), nil
		})
	case "toString":
		return method(func([]any) (any, error) { return s, nil })
	}
	return nil
}

func numberMethod(f float64, name string) any {
	switch name {
	case "toFixed":
		return method(func(args []any) (any, error) {
			digits := intArg(args, 0, 0)
			if digits < 0 || digits > 100 {
				return nil, fmt.Errorf("%w: toFixed digits out of range", ErrRange)
			}
			return strconv.FormatFloat(f, 'f', digits, 64), nil
		})
	case "toString":
		return method(func([]any) (any, error) { return formatNumber(f), nil })
	}
	return nil
}
