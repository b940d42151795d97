package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eduassess/internal/domain"
)

func fieldsOf(errs domain.ValidationErrors) []string {
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestValidateLogin(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		creds      domain.Credentials
		wantFields []string
	}{
		{
			name:  "valid",
			creds: domain.Credentials{Email: "alice@college.edu", Password: "secret1", Department: "CSE"},
		},
		{
			name:       "all fields missing",
			creds:      domain.Credentials{},
			wantFields: []string{"email", "password", "department"},
		},
		{
			name:       "malformed email",
			creds:      domain.Credentials{Email: "not-an-email", Password: "secret1", Department: "CSE"},
			wantFields: []string{"email"},
		},
		{
			name:       "email missing domain",
			creds:      domain.Credentials{Email: "alice@college", Password: "secret1", Department: "CSE"},
			wantFields: []string{"email"},
		},
		{
			name:       "short password",
			creds:      domain.Credentials{Email: "alice@college.edu", Password: "12345", Department: "CSE"},
			wantFields: []string{"password"},
		},
		{
			name:       "whitespace department",
			creds:      domain.Credentials{Email: "alice@college.edu", Password: "secret1", Department: "  "},
			wantFields: []string{"department"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateLogin(tt.creds)
			assert.ElementsMatch(t, tt.wantFields, fieldsOf(errs))
		})
	}
}

func TestValidateSignup(t *testing.T) {
	v := NewValidator()

	valid := domain.SignupInput{
		Name:       "Alice Johnson",
		Email:      "alice@college.edu",
		Password:   "secret1",
		Department: "CSE",
		RollNo:     "CS101",
		Age:        12,
	}

	tests := []struct {
		name       string
		mutate     func(in *domain.SignupInput)
		wantFields []string
	}{
		{
			name:   "valid",
			mutate: func(in *domain.SignupInput) {},
		},
		{
			name:   "optional fields omitted",
			mutate: func(in *domain.SignupInput) { in.RollNo = ""; in.Age = 0 },
		},
		{
			name:       "single-character name",
			mutate:     func(in *domain.SignupInput) { in.Name = "A" },
			wantFields: []string{"name"},
		},
		{
			name:       "missing name",
			mutate:     func(in *domain.SignupInput) { in.Name = " " },
			wantFields: []string{"name"},
		},
		{
			name:       "short roll number",
			mutate:     func(in *domain.SignupInput) { in.RollNo = "C1" },
			wantFields: []string{"rollNo"},
		},
		{
			name:       "age below range",
			mutate:     func(in *domain.SignupInput) { in.Age = 9 },
			wantFields: []string{"age"},
		},
		{
			name:       "age above range",
			mutate:     func(in *domain.SignupInput) { in.Age = 101 },
			wantFields: []string{"age"},
		},
		{
			name:       "short password and bad email together",
			mutate:     func(in *domain.SignupInput) { in.Password = "123"; in.Email = "nope" },
			wantFields: []string{"password", "email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			errs := v.ValidateSignup(in)
			assert.ElementsMatch(t, tt.wantFields, fieldsOf(errs))
		})
	}
}
