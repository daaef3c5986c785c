package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdir/internal/gateway"
)

func TestSetValuesPreservesSubmissionOrder(t *testing.T) {
	s := New("companies-house", time.Now())
	s.SetValues("user-account", map[string]string{"email": "a@b.com"})
	s.SetValues("company-search", map[string]string{"company_number": "12345678"})

	// Re-submitting an earlier step must replace in place, not move it.
	s.SetValues("user-account", map[string]string{"email": "edited@b.com"})

	require.Len(t, s.Steps, 2)
	assert.Equal(t, "user-account", s.Steps[0].Step)
	assert.Equal(t, "company-search", s.Steps[1].Step)
	assert.Equal(t, "edited@b.com", s.Values("user-account")["email"])
}

func TestSetValuesCopiesInput(t *testing.T) {
	s := New("sole-trader", time.Now())
	in := map[string]string{"email": "a@b.com"}
	s.SetValues("user-account", in)
	in["email"] = "mutated"
	assert.Equal(t, "a@b.com", s.Values("user-account")["email"])
}

func TestClearFromRemovesLaterSteps(t *testing.T) {
	s := New("companies-house", time.Now())
	s.SetValues("user-account", map[string]string{"email": "a@b.com"})
	s.SetValues("company-search", map[string]string{"company_number": "12345678"})
	s.SetValues("business-details", map[string]string{"sectors": "TECH"})

	s.ClearFrom("company-search")

	assert.True(t, s.HasStep("user-account"))
	assert.False(t, s.HasStep("company-search"))
	assert.False(t, s.HasStep("business-details"))
}

func TestRemoteErrorRoundTrip(t *testing.T) {
	s := New("companies-house", time.Now())
	s.SetValues("user-account", map[string]string{"email": "a@b.com", "password": "pw"})

	require.Nil(t, s.RemoteError("user-account"))

	s.SetRemoteError("user-account", map[string][]string{"password": {"Too common."}})
	fields := s.RemoteError("user-account")
	require.NotNil(t, fields)
	assert.Equal(t, []string{"Too common."}, fields["password"])

	// The reserved key never leaks into rendered values.
	_, ok := s.Values("user-account")["__remote_error__"]
	assert.False(t, ok)

	s.ClearRemoteError("user-account")
	assert.Nil(t, s.RemoteError("user-account"))
}

func TestSetValuesKeepsRemoteError(t *testing.T) {
	s := New("companies-house", time.Now())
	s.SetRemoteError("verification", map[string][]string{"code": {"Invalid."}})
	s.SetValues("verification", map[string]string{"code": "54321"})
	assert.NotNil(t, s.RemoteError("verification"))
}

func TestClearValue(t *testing.T) {
	s := New("companies-house", time.Now())
	s.SetValues("verification", map[string]string{"code": "12345"})
	s.ClearValue("verification", "code")
	_, ok := s.Values("verification")["code"]
	assert.False(t, ok)
}

func TestCompanyCache(t *testing.T) {
	s := New("companies-house", time.Now())
	_, ok := s.CachedCompany("12345678")
	assert.False(t, ok)

	s.CacheCompany(gateway.Company{Number: "12345678", Name: "Acme Ltd", Status: "active"})
	c, ok := s.CachedCompany("12345678")
	require.True(t, ok)
	assert.Equal(t, "Acme Ltd", c.Name)
}
