package router

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Decode copies route params into the fields of the struct target points
// to. Fields opt in with a `param:"name"` tag; string, integer, float,
// bool and []string (split on "/", for "*" captures) fields are supported.
//
//	var p struct {
//		ID   int    `param:"id"`
//		Slug string `param:"slug"`
//	}
//	err := router.Decode(m.Params, &p)
func Decode(params map[string]string, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("router: decode target must be a pointer to struct, got %T", target)
	}
	v = v.Elem()
	t := v.Type()
	for i := range t.NumField() {
		name := t.Field(i).Tag.Get("param")
		if name == "" {
			continue
		}
		raw, ok := params[name]
		if !ok || !v.Field(i).CanSet() {
			continue
		}
		if err := setField(v.Field(i), raw); err != nil {
			return fmt.Errorf("router: param %q: %w", name, err)
		}
	}
	return nil
}

func setField(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, f.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		f.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, f.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", raw)
		}
		f.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, f.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		f.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", raw)
		}
		f.SetBool(b)
	case reflect.Slice:
		if f.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", f.Type().Elem().Kind())
		}
		var parts []string
		if raw != "" {
			parts = strings.Split(raw, "/")
		}
		f.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("unsupported field kind %s", f.Kind())
	}
	return nil
}
