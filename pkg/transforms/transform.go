package transforms

import (
	"reflect"
	"strings"

	"github.com/rs/zerolog/log"
)

// TransformDefinition overrides fields on any value of Type whose Match fields
// all equal the given strings. Type is the Go type name without package, e.g.
// "Route" or "Stop"; empty matches every type.
type TransformDefinition struct {
	Type  string                 `yaml:"type"`
	Match map[string]string      `yaml:"match" validate:"required"`
	Data  map[string]interface{} `yaml:"data" validate:"required"`
}

func (t *TransformDefinition) matches(inputValue reflect.Value) bool {
	if t.Type != "" && t.Type != inputValue.Type().Name() {
		return false
	}

	for key, value := range t.Match {
		field := inputValue.FieldByName(key)
		if !field.IsValid() || field.Kind() != reflect.String || value != field.String() {
			return false
		}
	}

	return true
}

func (t *TransformDefinition) Transform(inputValue reflect.Value) {
	if !inputValue.IsValid() || inputValue.Kind() != reflect.Struct {
		return
	}

	if t.matches(inputValue) {
		for key, value := range t.Data {
			field := inputValue.FieldByName(key)
			if !field.IsValid() || !field.CanSet() {
				continue
			}

			newValue := reflect.ValueOf(value)
			if !newValue.IsValid() || !newValue.Type().ConvertibleTo(field.Type()) ||
				field.Kind() == reflect.String && newValue.Kind() != reflect.String {
				log.Warn().Str("field", key).Interface("value", value).Msg("Transform value does not fit field")
				continue
			}
			field.Set(newValue.Convert(field.Type()))
		}
	}

	for i := 0; i < inputValue.NumField(); i++ {
		valueField := inputValue.Field(i)
		if !inputValue.Type().Field(i).IsExported() {
			continue
		}

		switch valueField.Kind() {
		case reflect.Pointer:
			if !valueField.IsNil() && valueField.Elem().Kind() == reflect.Struct {
				t.Transform(valueField.Elem())
			}
		case reflect.Struct:
			t.Transform(valueField)
		case reflect.Slice:
			for j := 0; j < valueField.Len(); j++ {
				element := valueField.Index(j)
				if element.Kind() == reflect.Pointer && !element.IsNil() {
					element = element.Elem()
				}
				t.Transform(element)
			}
		}
	}
}

// Set is an ordered list of transforms, later definitions win
type Set []*TransformDefinition

// Apply runs every transform over a pointer to a struct or a slice of them,
// descending into nested structs and slices
func (s Set) Apply(input interface{}) {
	if len(s) == 0 || input == nil {
		return
	}

	inputValueOf := reflect.ValueOf(input)

	var targets []reflect.Value
	switch inputValueOf.Kind() {
	case reflect.Slice:
		for i := 0; i < inputValueOf.Len(); i++ {
			targets = append(targets, reflect.Indirect(inputValueOf.Index(i)))
		}
	case reflect.Pointer:
		targets = append(targets, inputValueOf.Elem())
	default:
		log.Debug().Str("type", strings.TrimPrefix(inputValueOf.Type().String(), "*")).Msg("Transform input is not addressable")
		return
	}

	for _, target := range targets {
		for _, transformDef := range s {
			transformDef.Transform(target)
		}
	}
}
