package mvvm

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// HasErrorsProperty is raised whenever the error count changes.
const HasErrorsProperty = "HasErrors"

// Validatable validates view-model input against `validate` struct tags and
// keeps the current message per field, so a view can enable its save action
// only while HasErrors is false.
type Validatable struct {
	Observable

	mu     sync.Mutex
	errors map[string]string
}

// ValidateProperty validates one field of obj, records the outcome and
// returns the first message, or "" when the field is valid.
func (v *Validatable) ValidateProperty(obj any, field string) string {
	msg := ""
	if err := validate.StructPartial(obj, field); err != nil {
		msg = firstMessage(err)
	}
	v.record(map[string]string{field: msg})
	return msg
}

// Validate validates every field of obj and reports whether it is valid.
// Previous messages are replaced.
func (v *Validatable) Validate(obj any) bool {
	found := make(map[string]string)
	if err := validate.Struct(obj); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			found[""] = err.Error()
		}
		for _, fe := range verrs {
			if _, ok := found[fe.StructField()]; !ok {
				found[fe.StructField()] = messageFor(fe)
			}
		}
	}

	v.mu.Lock()
	changed := !maps.Equal(v.errors, found)
	v.errors = found
	v.mu.Unlock()

	if changed {
		v.RaisePropertyChanged(HasErrorsProperty)
	}
	return len(found) == 0
}

// ErrorCount returns the number of fields currently in error.
func (v *Validatable) ErrorCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.errors)
}

// HasErrors reports whether any field is in error.
func (v *Validatable) HasErrors() bool { return v.ErrorCount() > 0 }

// Errors returns a copy of the messages keyed by field.
func (v *Validatable) Errors() map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return maps.Clone(v.errors)
}

// FirstError returns the message of the first field in error, by field
// name, or "".
func (v *Validatable) FirstError() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.errors) == 0 {
		return ""
	}
	return v.errors[slices.Min(slices.Collect(maps.Keys(v.errors)))]
}

// ClearErrors forgets every message.
func (v *Validatable) ClearErrors() {
	v.mu.Lock()
	had := len(v.errors) > 0
	v.errors = nil
	v.mu.Unlock()
	if had {
		v.RaisePropertyChanged(HasErrorsProperty)
	}
}

// record sets or clears the message of each field; an empty message clears.
func (v *Validatable) record(msgs map[string]string) {
	v.mu.Lock()
	before := len(v.errors)
	for field, msg := range msgs {
		if msg == "" {
			delete(v.errors, field)
			continue
		}
		if v.errors == nil {
			v.errors = make(map[string]string)
		}
		v.errors[field] = msg
	}
	after := len(v.errors)
	v.mu.Unlock()

	if before != after {
		v.RaisePropertyChanged(HasErrorsProperty)
	}
}

func firstMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return messageFor(verrs[0])
	}
	return err.Error()
}

// messageFor returns a human-readable message for a failed validation tag.
func messageFor(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
