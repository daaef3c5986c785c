package wizard

import (
	"bizdir/internal/gateway"
	"bizdir/internal/session"
)

// personalFields are the profile fields sourced from the account and
// personal-details steps; every flow that creates a profile includes them.
var personalFields = []string{
	"given_name",
	"family_name",
	"job_title",
	"phone_number",
	"email",
}

// draftWhitelists names, per flow, the step fields allowed into the submitted
// profile draft. Anything recorded in the session but absent here never
// leaves this service.
var draftWhitelists = map[Flow][]string{
	FlowCompaniesHouse: append([]string{
		"company_name",
		"company_number",
		"postal_code",
		"address_line_1",
		"address_line_2",
		"sectors",
		"website",
	}, personalFields...),
	FlowSoleTrader: append([]string{
		"company_name",
		"sectors",
		"website",
	}, personalFields...),
	FlowIndividual:   personalFields,
	FlowCollaborator: personalFields,
	FlowPreVerified: append([]string{
		"company_name",
		"sectors",
		"website",
	}, personalFields...),
}

// draftOverrides are fixed values injected per flow regardless of user input.
var draftOverrides = map[Flow]map[string]string{
	FlowCompaniesHouse: {"company_type": "COMPANIES_HOUSE"},
}

// BuildDraft assembles the whitelisted profile draft from the session's step
// data. Steps are walked in submission order, so a later step's value for a
// shared field name wins over an earlier one.
func BuildDraft(flow Flow, sess *session.Session) gateway.ProfileDraft {
	allowed := map[string]bool{}
	for _, f := range draftWhitelists[flow] {
		allowed[f] = true
	}

	draft := gateway.ProfileDraft{}
	for _, entry := range sess.Steps {
		for field, value := range sess.Values(entry.Step) {
			if allowed[field] && value != "" {
				draft[field] = value
			}
		}
	}
	for field, value := range draftOverrides[flow] {
		draft[field] = value
	}
	return draft
}
