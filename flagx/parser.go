// Package flagx binds cobra flags to tagged option structs.
//
//	type getOptions struct {
//	    Prefix string        `flag:"prefix,p" usage:"key prefix"`
//	    Wait   time.Duration `flag:"wait" default:"5s"`
//	}
//
// BindFlags registers one flag per tagged field; ParseFlags copies the parsed
// values back after cobra has processed the command line.
package flagx

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var durationType = reflect.TypeOf(time.Duration(0))

type fieldSpec struct {
	index    int
	name     string
	short    string
	usage    string
	def      string
	required bool
}

func specs(target interface{}) (reflect.Value, []fieldSpec, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("flagx: target must be a pointer to struct, got %T", target)
	}
	v = v.Elem()
	t := v.Type()

	var out []fieldSpec
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("flag")
		if tag == "" || !f.IsExported() {
			continue
		}
		name, short, _ := strings.Cut(tag, ",")
		out = append(out, fieldSpec{
			index:    i,
			name:     name,
			short:    short,
			usage:    f.Tag.Get("usage"),
			def:      f.Tag.Get("default"),
			required: f.Tag.Get("required") == "true",
		})
	}
	return v, out, nil
}

// BindFlags registers a flag on cmd for each tagged field of target
func BindFlags(cmd *cobra.Command, target interface{}) error {
	v, fields, err := specs(target)
	if err != nil {
		return err
	}
	fs := cmd.Flags()
	for _, s := range fields {
		ft := v.Type().Field(s.index)
		switch {
		case ft.Type == durationType:
			def, err := parseDefault(s, time.ParseDuration)
			if err != nil {
				return err
			}
			fs.DurationP(s.name, s.short, def, s.usage)
		case ft.Type.Kind() == reflect.String:
			fs.StringP(s.name, s.short, s.def, s.usage)
		case ft.Type.Kind() == reflect.Int:
			def, err := parseDefault(s, strconv.Atoi)
			if err != nil {
				return err
			}
			fs.IntP(s.name, s.short, def, s.usage)
		case ft.Type.Kind() == reflect.Bool:
			def, err := parseDefault(s, strconv.ParseBool)
			if err != nil {
				return err
			}
			fs.BoolP(s.name, s.short, def, s.usage)
		case ft.Type.Kind() == reflect.Slice && ft.Type.Elem().Kind() == reflect.String:
			// repeatable, values are not split on commas
			fs.StringArrayP(s.name, s.short, nil, s.usage)
		default:
			return fmt.Errorf("flagx: field %s has unsupported type %s", ft.Name, ft.Type)
		}
		if s.required {
			if err := cmd.MarkFlagRequired(s.name); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseDefault[T any](s fieldSpec, parse func(string) (T, error)) (T, error) {
	var zero T
	if s.def == "" {
		return zero, nil
	}
	v, err := parse(s.def)
	if err != nil {
		return zero, fmt.Errorf("flagx: bad default %q for --%s: %w", s.def, s.name, err)
	}
	return v, nil
}

// ParseFlags copies the parsed flag values of cmd into the tagged fields of target
func ParseFlags(cmd *cobra.Command, target interface{}) error {
	v, fields, err := specs(target)
	if err != nil {
		return err
	}
	fs := cmd.Flags()
	for _, s := range fields {
		field := v.Field(s.index)
		if fs.Lookup(s.name) == nil {
			return fmt.Errorf("flagx: flag --%s is not defined", s.name)
		}
		switch {
		case field.Type() == durationType:
			d, err := fs.GetDuration(s.name)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		case field.Kind() == reflect.String:
			val, err := fs.GetString(s.name)
			if err != nil {
				return err
			}
			field.SetString(val)
		case field.Kind() == reflect.Int:
			val, err := fs.GetInt(s.name)
			if err != nil {
				return err
			}
			field.SetInt(int64(val))
		case field.Kind() == reflect.Bool:
			val, err := fs.GetBool(s.name)
			if err != nil {
				return err
			}
			field.SetBool(val)
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
			val, err := fs.GetStringArray(s.name)
			if err != nil {
				return err
			}
			field.Set(reflect.ValueOf(val))
		default:
			return fmt.Errorf("flagx: field %s has unsupported type %s", v.Type().Field(s.index).Name, field.Type())
		}
	}
	return nil
}
