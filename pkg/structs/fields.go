package structs

import (
	"reflect"
	"strings"

	"github.com/oleiade/reflections"
)

// GetField returns the value of the provided obj field. obj can whether be a structure or pointer to structure.
func GetField(obj any, name string) any {
	v, err := reflections.GetField(obj, name)
	if err != nil {
		panic(err)
	}

	return v
}

// SetField sets the provided obj field with provided value.
// obj param has to be a pointer to a struct, otherwise it will soundly fail.
// Provided value type should match with the struct field you're trying to set.
func SetField(obj any, name string, value any) {
	if err := reflections.SetField(obj, name, value); err != nil {
		panic(err)
	}
}

// Pick returns the given fields of obj as a map.
// All fields are returned when names is empty.
func Pick(obj any, names ...string) map[string]any {
	if len(names) == 0 {
		var err error
		names, err = reflections.FieldsDeep(obj)
		if err != nil {
			panic(err)
		}
	}

	m := make(map[string]any, len(names))
	for _, name := range names {
		m[name] = GetField(obj, name)
	}
	return m
}

// TrimSpaces trims the leading and trailing spaces of all the string fields tagged with `sanitize:"trim"`.
// obj param has to be a pointer to a struct.
func TrimSpaces(obj any) {
	tags, err := reflections.Tags(obj, "sanitize")
	if err != nil {
		panic(err)
	}

	for name, tag := range tags {
		if tag != "trim" {
			continue
		}

		kind, err := reflections.GetFieldKind(obj, name)
		if err != nil {
			panic(err)
		}
		if kind != reflect.String {
			continue
		}

		SetField(obj, name, strings.TrimSpace(GetField(obj, name).(string)))
	}
}
