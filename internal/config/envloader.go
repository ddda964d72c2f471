package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// MergeFromEnv overrides config fields from environment variables.
// Fields opt in with an `env` struct tag; nested structs are walked.
func MergeFromEnv(cfg interface{}) error {
	return mergeFromEnv(reflect.ValueOf(cfg))
}

func mergeFromEnv(v reflect.Value) error {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := mergeFromEnv(field); err != nil {
				return err
			}
			continue
		}

		envVar := t.Field(i).Tag.Get("env")
		if envVar == "" {
			continue
		}
		value, ok := os.LookupEnv(envVar)
		if !ok || value == "" {
			continue
		}

		if err := setField(field, value); err != nil {
			return fmt.Errorf("%s (%s): %w", t.Field(i).Name, envVar, err)
		}
	}

	return nil
}

// setField parses value into field according to its kind.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))

	default:
		return fmt.Errorf("unsupported type %s", field.Kind())
	}

	return nil
}
