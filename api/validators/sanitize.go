package validators

import (
	"reflect"
	"strings"
)

// SanitizeString trims whitespace and truncates to maxLen runes.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 {
		if runes := []rune(trimmed); len(runes) > maxLen {
			return string(runes[:maxLen])
		}
	}
	return trimmed
}

// TrimStrings trims surrounding whitespace from the exported string and
// *string fields of the struct dest points to, descending into nested
// structs. Fields tagged `trim:"-"` keep the value as sent.
func TrimStrings(dest any) {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	trimStruct(v.Elem())
}

func trimStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Tag.Get("trim") == "-" {
			continue
		}
		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(strings.TrimSpace(field.String()))
		case reflect.Struct:
			trimStruct(field)
		case reflect.Pointer:
			if field.IsNil() {
				continue
			}
			elem := field.Elem()
			switch elem.Kind() {
			case reflect.String:
				elem.SetString(strings.TrimSpace(elem.String()))
			case reflect.Struct:
				trimStruct(elem)
			}
		}
	}
}
