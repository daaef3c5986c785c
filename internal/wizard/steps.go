package wizard

import (
	"bizdir/internal/flags"
	"bizdir/internal/gateway"
	"bizdir/internal/session"
)

// Step identifies one wizard step.
type Step string

const (
	StepBusinessType    Step = "business-type"
	StepUserAccount     Step = "user-account"
	StepVerification    Step = "verification"
	StepResend          Step = "resend"
	StepCompanySearch   Step = "company-search"
	StepAddressLookup   Step = "address-lookup"
	StepBusinessDetails Step = "business-details"
	StepPersonalDetails Step = "personal-details"
)

// Env is the input to every step-applicability condition: the caller's
// identity, the accumulated session state and the resolved feature flags.
// Conditions are pure predicates over Env.
type Env struct {
	Identity *gateway.User
	Session  *session.Session
	Flags    flags.Set
	// Requested is the step named in the incoming request; the user-account
	// condition needs it for its jumped-to-verification exception.
	Requested Step
}

// Anonymous reports whether the caller has no SSO identity.
func (e Env) Anonymous() bool { return e.Identity == nil }

// Condition decides whether a step is shown given the current Env.
type Condition func(Env) bool

// conditions is the per-step applicability table. Steps absent from the
// table always apply. The progress presenter consults the same table, so the
// indicator can never diverge from engine routing.
var conditions = map[Step]Condition{
	// Shown only while business-type selection is enabled.
	StepBusinessType: func(e Env) bool {
		return e.Flags.Enabled(flags.SelectBusiness)
	},

	// Account creation is for anonymous callers; it also applies when the
	// caller jumped straight to verification with no account data recorded,
	// to avoid orphaned verification state.
	StepUserAccount: func(e Env) bool {
		if e.Anonymous() {
			return true
		}
		return e.Requested == StepVerification && !e.Session.HasStep(string(StepUserAccount))
	},

	StepVerification: func(e Env) bool {
		return e.Anonymous()
	},

	// Manual address entry is needed only when the selected company's
	// registry record omits address data.
	StepAddressLookup: func(e Env) bool {
		number := e.Session.Values(string(StepCompanySearch))["company_number"]
		if number == "" {
			return false
		}
		return gateway.HasInsufficientAddress(number)
	},

	StepPersonalDetails: func(e Env) bool {
		return e.Anonymous() || !e.Identity.HasExistingProfile
	},
}

// applies evaluates a step's condition, defaulting to shown.
func applies(step Step, env Env) bool {
	cond, ok := conditions[step]
	if !ok {
		return true
	}
	return cond(env)
}

// Business-type choices map directly onto flow kinds.
var businessTypeChoices = []string{
	string(FlowCompaniesHouse),
	string(FlowSoleTrader),
	string(FlowIndividual),
}

// schemas declares each step's form. One schema per step id, shared across
// the flows that include the step.
var schemas = map[Step]Schema{
	StepBusinessType: {Fields: []Field{
		{Name: "choice", Label: "Business type", Kind: KindChoice, Required: true, Choices: businessTypeChoices},
	}},
	StepUserAccount: {Fields: []Field{
		{Name: "email", Label: "Email address", Kind: KindEmail, Required: true, MaxLength: 255},
		{Name: "password", Label: "Password", Kind: KindPassword, Required: true, MinLength: 10, MaxLength: 128},
	}},
	StepVerification: {Fields: []Field{
		{Name: "code", Label: "Confirmation code", Kind: KindDigits, Required: true, MinLength: 5, MaxLength: 5},
	}},
	StepResend: {Fields: []Field{
		{Name: "email", Label: "Email address", Kind: KindEmail, Required: true, MaxLength: 255},
	}},
	StepCompanySearch: {Fields: []Field{
		{Name: "company_name", Label: "Company name", Kind: KindText, Required: true, MaxLength: 255},
		{Name: "company_number", Label: "Company number", Kind: KindText, Required: true, MinLength: 8, MaxLength: 8},
	}},
	StepAddressLookup: {Fields: []Field{
		{Name: "postal_code", Label: "Postcode", Kind: KindText, Required: true, MaxLength: 12},
		{Name: "address_line_1", Label: "Address line 1", Kind: KindText, Required: true, MaxLength: 255},
		{Name: "address_line_2", Label: "Address line 2", Kind: KindText, MaxLength: 255},
	}},
	StepBusinessDetails: {Fields: []Field{
		{Name: "company_name", Label: "Business name", Kind: KindText, Required: true, MaxLength: 255},
		{Name: "sectors", Label: "Industry", Kind: KindText, Required: true, MaxLength: 64},
		{Name: "website", Label: "Website", Kind: KindURL, MaxLength: 255},
	}},
	StepPersonalDetails: {Fields: []Field{
		{Name: "given_name", Label: "First name", Kind: KindText, Required: true, MaxLength: 128},
		{Name: "family_name", Label: "Last name", Kind: KindText, Required: true, MaxLength: 128},
		{Name: "job_title", Label: "Job title", Kind: KindText, Required: true, MaxLength: 128},
		{Name: "phone_number", Label: "Phone number", Kind: KindDigits, MaxLength: 16},
	}},
}

// templates maps each step to its render template.
var templates = map[Step]string{
	StepBusinessType:    "business_type",
	StepUserAccount:     "user_account",
	StepVerification:    "verification",
	StepResend:          "resend",
	StepCompanySearch:   "company_search",
	StepAddressLookup:   "address_lookup",
	StepBusinessDetails: "business_details",
	StepPersonalDetails: "personal_details",
}
