package domain

import (
	"errors"
	"testing"
)

func validInput() LeadInput {
	return LeadInput{
		Name:   "Carlos Dias",
		Email:  "carlos@example.com",
		Phone:  "11999990000",
		Source: "Referral",
	}
}

func TestValidateLeadInputFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LeadInput)
		field  string
	}{
		{name: "short name", mutate: func(in *LeadInput) { in.Name = "A" }, field: FieldName},
		{name: "blank name", mutate: func(in *LeadInput) { in.Name = "   " }, field: FieldName},
		{name: "malformed email", mutate: func(in *LeadInput) { in.Email = "not-an-email" }, field: FieldEmail},
		{name: "email without tld", mutate: func(in *LeadInput) { in.Email = "a@b" }, field: FieldEmail},
		{name: "short phone", mutate: func(in *LeadInput) { in.Phone = "1234567" }, field: FieldPhone},
		{name: "short source", mutate: func(in *LeadInput) { in.Source = "x" }, field: FieldSource},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			err := ValidateLeadInput(in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0].Field != tc.field {
				t.Fatalf("expected only %s to fail, got %#v", tc.field, verr.Fields)
			}
		})
	}
}

func TestValidateLeadInputReportsEveryField(t *testing.T) {
	err := ValidateLeadInput(LeadInput{Name: "A", Email: "nope", Phone: "1", Source: ""})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	want := []string{FieldName, FieldEmail, FieldPhone, FieldSource}
	if len(verr.Fields) != len(want) {
		t.Fatalf("expected %d field errors, got %#v", len(want), verr.Fields)
	}
	for i, field := range want {
		if verr.Fields[i].Field != field {
			t.Fatalf("field %d = %s, want %s", i, verr.Fields[i].Field, field)
		}
		if verr.Message(field) == "" {
			t.Fatalf("expected message for %s", field)
		}
	}
	if got := verr.Map()[FieldEmail]; got != "invalid email address" {
		t.Fatalf("unexpected email message %q", got)
	}
}

func TestValidateLeadInputAcceptsBoundaries(t *testing.T) {
	in := LeadInput{Name: "Jo", Email: "jo+crm@mail.example.co", Phone: "12345678", Source: "TV"}
	if err := ValidateLeadInput(in); err != nil {
		t.Fatalf("expected boundary input to pass, got %v", err)
	}
	if err := ValidateLeadInput(LeadInput{Name: "Zé", Email: "ze@example.com", Phone: "(11) 9999", Source: "Indicação"}); err != nil {
		t.Fatalf("expected multi-byte input to pass, got %v", err)
	}
}
