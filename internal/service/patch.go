package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"tourops/internal/repository"
)

// applyPatch decodes a JSON merge patch into item. Nested objects merge
// into the stored value, while a list in the patch replaces the stored list
// and an explicit null clears the field.
func applyPatch[T any](item *T, patch json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}
	v := reflect.ValueOf(item).Elem()
	if v.Kind() == reflect.Struct {
		for key, raw := range fields {
			f, ok := jsonField(v, key)
			if !ok || !f.CanSet() {
				continue
			}
			if isNull(raw) || f.Kind() == reflect.Slice || f.Kind() == reflect.Map {
				f.Set(reflect.Zero(f.Type()))
			}
		}
	}
	if err := json.Unmarshal(patch, item); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// jsonField finds the field encoding/json would decode key into, looking
// through embedded structs. Exact names win over case-insensitive ones.
func jsonField(v reflect.Value, key string) (reflect.Value, bool) {
	var folded reflect.Value
	found := false
	var walk func(v reflect.Value) (reflect.Value, bool)
	walk = func(v reflect.Value) (reflect.Value, bool) {
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() && !sf.Anonymous {
				continue
			}
			tag := sf.Tag.Get("json")
			if tag == "-" {
				continue
			}
			name, _, _ := strings.Cut(tag, ",")
			if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
				if f, ok := walk(v.Field(i)); ok {
					return f, true
				}
				continue
			}
			if !sf.IsExported() {
				continue
			}
			if name == "" {
				name = sf.Name
			}
			if name == key {
				return v.Field(i), true
			}
			if !found && strings.EqualFold(name, key) {
				folded, found = v.Field(i), true
			}
		}
		return reflect.Value{}, false
	}
	if f, ok := walk(v); ok {
		return f, true
	}
	return folded, found
}
