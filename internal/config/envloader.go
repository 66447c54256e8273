package config

import (
	"encoding"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// LoadFromEnv reads the variables named by Config's `env` struct tags into
// a Partial. Unset or empty variables leave the field unset. A value that
// does not parse is reported and skipped.
func LoadFromEnv() (Partial, []error) {
	var p Partial
	var errs []error

	cfgType := reflect.TypeOf(Config{})
	pv := reflect.ValueOf(&p).Elem()

	for i := 0; i < cfgType.NumField(); i++ {
		fieldType := cfgType.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envValue := strings.TrimSpace(os.Getenv(envTag))
		if envValue == "" {
			continue
		}

		target := pv.FieldByName(fieldType.Name)
		if !target.IsValid() || target.Kind() != reflect.Ptr {
			continue
		}

		ptr := reflect.New(fieldType.Type)
		if err := setFieldValue(ptr.Elem(), envValue, fieldType.Name, envTag); err != nil {
			errs = append(errs, err)
			continue
		}
		target.Set(ptr)
	}

	return p, errs
}

// setFieldValue sets a field value from a string environment variable.
func setFieldValue(field reflect.Value, value string, fieldName string, envVar string) error {
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
			if err := u.UnmarshalText([]byte(value)); err != nil {
				return fmt.Errorf("invalid value for %s (%s): %w", fieldName, envVar, err)
			}
			return nil
		}
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer for %s (%s): %w", fieldName, envVar, err)
		}
		field.SetInt(intVal)

	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s (%s): %w", fieldName, envVar, err)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported type %s for %s (%s)", field.Kind(), fieldName, envVar)
	}

	return nil
}
