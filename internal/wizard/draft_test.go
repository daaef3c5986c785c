package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bizdir/internal/session"
)

func seededSession(flow Flow) *session.Session {
	sess := session.New(string(flow), time.Now())
	sess.SetValues(string(StepBusinessType), map[string]string{"choice": string(flow)})
	sess.SetValues(string(StepUserAccount), map[string]string{"email": "owner@acme.example"})
	sess.SetValues(string(StepCompanySearch), map[string]string{
		"company_name":   "Acme Widgets Ltd",
		"company_number": "12345678",
	})
	sess.SetValues(string(StepBusinessDetails), map[string]string{
		"company_name": "Acme Widgets",
		"sectors":      "manufacturing",
		"website":      "https://acme.example",
	})
	sess.SetValues(string(StepPersonalDetails), map[string]string{
		"given_name":   "Ada",
		"family_name":  "Lovelace",
		"job_title":    "Director",
		"phone_number": "07700900123",
	})
	return sess
}

func TestBuildDraftCompaniesHouse(t *testing.T) {
	draft := BuildDraft(FlowCompaniesHouse, seededSession(FlowCompaniesHouse))

	assert.Equal(t, "Acme Widgets", draft["company_name"], "later step overrides the search result")
	assert.Equal(t, "12345678", draft["company_number"])
	assert.Equal(t, "COMPANIES_HOUSE", draft["company_type"])
	assert.Equal(t, "owner@acme.example", draft["email"])
	assert.Equal(t, "Ada", draft["given_name"])
	assert.NotContains(t, draft, "choice")
	assert.NotContains(t, draft, "password")
}

func TestBuildDraftWhitelistPerFlow(t *testing.T) {
	sess := seededSession(FlowIndividual)

	draft := BuildDraft(FlowIndividual, sess)
	assert.NotContains(t, draft, "company_name")
	assert.NotContains(t, draft, "company_number")
	assert.NotContains(t, draft, "company_type")
	assert.Equal(t, "owner@acme.example", draft["email"])

	soleTrader := BuildDraft(FlowSoleTrader, sess)
	assert.Equal(t, "Acme Widgets", soleTrader["company_name"])
	assert.NotContains(t, soleTrader, "company_number")
	assert.NotContains(t, soleTrader, "company_type")
}

func TestBuildDraftSkipsReservedAndEmptyValues(t *testing.T) {
	sess := session.New(string(FlowIndividual), time.Now())
	sess.SetValues(string(StepPersonalDetails), map[string]string{
		"given_name":   "Ada",
		"family_name":  "Lovelace",
		"job_title":    "Director",
		"phone_number": "",
	})
	sess.SetRemoteError(string(StepPersonalDetails), map[string][]string{"given_name": {"x"}})

	draft := BuildDraft(FlowIndividual, sess)
	assert.NotContains(t, draft, "phone_number")
	assert.NotContains(t, draft, "__remote_error__")
	assert.Equal(t, "Ada", draft["given_name"])
}
