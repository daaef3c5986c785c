package wizard

import (
	"context"
	"net/http"

	"bizdir/internal/gateway"
	dErrors "bizdir/pkg/domain-errors"
)

// Remote failure messages rendered against the field that caused them.
const (
	msgCompanyNotFound  = "Company not found"
	msgCompanyNotActive = "Company not active"
	msgIncorrectCode    = "Incorrect confirmation code"
)

// finisher runs a step's remote pre-check after local validation passes but
// before the step's data is recorded. A non-empty failure map re-renders the
// step without recording anything.
type finisher func(e *Engine, ctx context.Context, env Env, clean map[string]string) (map[string][]string, error)

var finishers = map[Step]finisher{
	StepCompanySearch: finishCompanySearch,
}

// finishCompanySearch confirms the selected company exists and is active,
// caching the registry record in the session so later renders skip the
// lookup.
func finishCompanySearch(e *Engine, ctx context.Context, env Env, clean map[string]string) (map[string][]string, error) {
	number := clean["company_number"]
	if env.Session.CachedCompanyMiss(number) {
		return map[string][]string{"company_number": {msgCompanyNotFound}}, nil
	}

	company, cached := env.Session.CachedCompany(number)
	if !cached {
		found, result, err := e.registry.GetCompany(ctx, number)
		if err != nil {
			return nil, err
		}
		if !result.OK() {
			env.Session.CacheCompanyMiss(number)
			return map[string][]string{"company_number": {msgCompanyNotFound}}, nil
		}
		company = *found
		env.Session.CacheCompany(company)
	}

	if !company.IsActive() {
		return map[string][]string{"company_name": {msgCompanyNotActive}}, nil
	}
	return nil, nil
}

// effectOutput is what a side effect reports back: a recoverable remote
// failure to re-render with, stored fields to drop (consumed one-time
// secrets), and cookies to copy onto the response.
type effectOutput struct {
	failure map[string][]string
	clear   []string
	cookies []*http.Cookie
}

// effect fires a step's non-idempotent remote side effect after its data is
// recorded. Effects run exactly once per submission; recoverable failures are
// persisted with the step so a subsequent GET re-renders them without
// replaying the call.
type effect func(e *Engine, ctx context.Context, env Env, clean map[string]string) (effectOutput, error)

var effects = map[Step]effect{
	StepUserAccount:  effectCreateAccount,
	StepVerification: effectVerifyCode,
	StepResend:       effectResendCode,
}

// effectCreateAccount registers the account with the identity service. A
// duplicate email is deliberately indistinguishable from success to the
// browser; the existing holder is notified out of band instead.
func effectCreateAccount(e *Engine, ctx context.Context, env Env, clean map[string]string) (effectOutput, error) {
	out := effectOutput{clear: []string{"password"}}

	result, err := e.identity.CreateUser(ctx, clean["email"], clean["password"])
	if err != nil {
		return effectOutput{}, err
	}
	if result.OK() {
		return out, nil
	}

	switch {
	case result.Fields.Has("password"):
		out.failure = result.Fields
		return out, nil
	case result.Fields.Only("email"):
		if err := e.notify.SendAlreadyRegistered(ctx, clean["email"]); err != nil {
			return effectOutput{}, err
		}
		return out, nil
	default:
		return effectOutput{}, dErrors.New(dErrors.CodeInternal, "account creation rejected")
	}
}

// effectVerifyCode exchanges the emailed one-time code for an authenticated
// identity session. The code is cleared either way: consumed on success,
// invalid on failure.
func effectVerifyCode(e *Engine, ctx context.Context, env Env, clean map[string]string) (effectOutput, error) {
	out := effectOutput{clear: []string{"code"}}
	email := applicantEmail(env, env.Session)

	verified, result, err := e.identity.VerifyCode(ctx, email, clean["code"])
	if err != nil {
		return effectOutput{}, err
	}
	if !result.OK() {
		out.failure = map[string][]string{"code": {msgIncorrectCode}}
		return out, nil
	}

	env.Session.Extra.IsNewEnrollment = true
	out.cookies = verified.Cookies
	return out, nil
}

// effectResendCode asks the identity service to regenerate the verification
// code. An unknown email is treated as success so the form cannot be used to
// probe which addresses hold accounts.
func effectResendCode(e *Engine, ctx context.Context, env Env, clean map[string]string) (effectOutput, error) {
	result, err := e.identity.RegenerateCode(ctx, clean["email"])
	if err != nil {
		return effectOutput{}, err
	}
	if result.Outcome == gateway.OutcomeInvalid {
		return effectOutput{failure: result.Fields}, nil
	}
	return effectOutput{}, nil
}
