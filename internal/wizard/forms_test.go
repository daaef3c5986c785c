package wizard

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidateCleansAndTrims(t *testing.T) {
	schema := schemas[StepPersonalDetails]
	clean, errs := schema.Validate(url.Values{
		"given_name":   {"  Ada  "},
		"family_name":  {"Lovelace"},
		"job_title":    {"Director"},
		"phone_number": {"07700900123"},
		"unknown":      {"dropped"},
	})
	require.Nil(t, errs)
	assert.Equal(t, "Ada", clean["given_name"])
	assert.NotContains(t, clean, "unknown")
}

func TestSchemaValidateRequiredFields(t *testing.T) {
	schema := schemas[StepUserAccount]
	clean, errs := schema.Validate(url.Values{})
	assert.Nil(t, clean)
	assert.Equal(t, []string{msgRequired}, errs["email"])
	assert.Equal(t, []string{msgRequired}, errs["password"])
}

func TestSchemaValidateFormats(t *testing.T) {
	tests := []struct {
		name  string
		step  Step
		form  url.Values
		field string
		msg   string
	}{
		{
			name:  "bad email",
			step:  StepUserAccount,
			form:  url.Values{"email": {"nope"}, "password": {"hunter2hunter2"}},
			field: "email",
			msg:   msgInvalidEmail,
		},
		{
			name:  "short password",
			step:  StepUserAccount,
			form:  url.Values{"email": {"a@b.example"}, "password": {"short"}},
			field: "password",
			msg:   "Must be between 10 and 128 characters",
		},
		{
			name:  "non-numeric code",
			step:  StepVerification,
			form:  url.Values{"code": {"abcde"}},
			field: "code",
			msg:   msgDigitsOnly,
		},
		{
			name:  "wrong length code",
			step:  StepVerification,
			form:  url.Values{"code": {"1234"}},
			field: "code",
			msg:   "Must be exactly 5 characters",
		},
		{
			name:  "bad website",
			step:  StepBusinessDetails,
			form:  url.Values{"company_name": {"Acme"}, "sectors": {"retail"}, "website": {"no spaces allowed"}},
			field: "website",
			msg:   msgInvalidURL,
		},
		{
			name:  "unknown business type",
			step:  StepBusinessType,
			form:  url.Values{"choice": {"charity"}},
			field: "choice",
			msg:   msgInvalidChoice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean, errs := schemas[tt.step].Validate(tt.form)
			assert.Nil(t, clean)
			require.True(t, errs.Has(tt.field))
			assert.Equal(t, []string{tt.msg}, errs[tt.field])
		})
	}
}

func TestSchemaValidateOptionalFieldMayBeEmpty(t *testing.T) {
	clean, errs := schemas[StepBusinessDetails].Validate(url.Values{
		"company_name": {"Acme"},
		"sectors":      {"retail"},
	})
	require.Nil(t, errs)
	assert.NotContains(t, clean, "website")
}
