package common

import "strings"

// FieldError describes a single failed validation rule for one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is an ordered list of field-level validation failures.
// It implements error so services can return it through the usual error path;
// callers detect it with errors.As.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
