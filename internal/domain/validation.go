package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Lead form field keys.
const (
	FieldName   = "name"
	FieldEmail  = "email"
	FieldPhone  = "phone"
	FieldSource = "source"
)

// Minimum lengths, in characters, for the add-lead form.
const (
	MinNameLength   = 2
	MinPhoneLength  = 8
	MinSourceLength = 2
)

// emailPattern matches the usual local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+'-]+@[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?)*\.[A-Za-z]{2,}$`)

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every rejected field of one submission, in form order.
type ValidationError struct {
	Fields []FieldError
}

// Error joins all field messages.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

// Is lets callers match with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Message returns the message for one field, or "" when the field passed.
func (e *ValidationError) Message(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Map returns field -> message.
func (e *ValidationError) Map() map[string]string {
	out := map[string]string{}
	if e == nil {
		return out
	}
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// ValidateLeadInput checks all four fields and reports every failure at once.
func ValidateLeadInput(in LeadInput) error {
	var fields []FieldError
	if charCount(in.Name) < MinNameLength {
		fields = append(fields, FieldError{Field: FieldName, Message: "name must be at least 2 characters"})
	}
	if !ValidEmail(in.Email) {
		fields = append(fields, FieldError{Field: FieldEmail, Message: "invalid email address"})
	}
	if charCount(in.Phone) < MinPhoneLength {
		fields = append(fields, FieldError{Field: FieldPhone, Message: "phone must be at least 8 characters"})
	}
	if charCount(in.Source) < MinSourceLength {
		fields = append(fields, FieldError{Field: FieldSource, Message: "source must be at least 2 characters"})
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ValidEmail reports whether raw looks like an email address.
func ValidEmail(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 254 {
		return false
	}
	return emailPattern.MatchString(raw)
}

func charCount(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
