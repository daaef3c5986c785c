// Package wizard drives the multi-step enrolment flows: a state machine over
// each flow's step sequence whose transitions depend on accumulated session
// state, the caller's identity, feature flags and remote collaborator
// outcomes.
package wizard

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"bizdir/internal/flags"
	"bizdir/internal/gateway"
	"bizdir/internal/platform/metrics"
	"bizdir/internal/session"
	dErrors "bizdir/pkg/domain-errors"
)

// IntentCreateProfile marks sessions whose ingress intent was creating a
// business profile; completion redirects there instead of the generic
// success page.
const IntentCreateProfile = "create-profile"

// IdentityService is the engine's view of the SSO collaborator.
type IdentityService interface {
	CreateUser(ctx context.Context, email, password string) (gateway.Result, error)
	VerifyCode(ctx context.Context, email, code string) (*gateway.VerifiedSession, gateway.Result, error)
	RegenerateCode(ctx context.Context, email string) (gateway.Result, error)
}

// RegistryService is the engine's view of the company registry.
type RegistryService interface {
	GetCompany(ctx context.Context, number string) (*gateway.Company, gateway.Result, error)
}

// DirectoryService is the engine's view of the profile persistence service.
type DirectoryService interface {
	CreateProfile(ctx context.Context, draft gateway.ProfileDraft) (gateway.Result, error)
	CompanyClaimed(ctx context.Context, number string) (bool, error)
	RequestCollaboration(ctx context.Context, number, applicantEmail string) (gateway.Result, error)
	AcceptInvite(ctx context.Context, key string, draft gateway.ProfileDraft) (gateway.Result, error)
	ClaimPreVerified(ctx context.Context, key string, draft gateway.ProfileDraft) (gateway.Result, error)
}

// NotifyService is the engine's view of the notification collaborator.
type NotifyService interface {
	SendAlreadyRegistered(ctx context.Context, email string) error
	SendCollaborationRequested(ctx context.Context, companyNumber, applicantEmail string) error
}

// Engine orchestrates step rendering, validation, side effects and
// advancement. All collaborator clients are injected so tests substitute
// doubles without process-wide patching.
type Engine struct {
	identity  IdentityService
	registry  RegistryService
	directory DirectoryService
	notify    NotifyService
	sessions  session.Store
	flags     flags.Set
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewEngine(
	identity IdentityService,
	registry RegistryService,
	directory DirectoryService,
	notify NotifyService,
	sessions session.Store,
	flagSet flags.Set,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Engine {
	return &Engine{
		identity:  identity,
		registry:  registry,
		directory: directory,
		notify:    notify,
		sessions:  sessions,
		flags:     flagSet,
		logger:    logger,
		metrics:   m,
	}
}

// Page is a render instruction for one step.
type Page struct {
	Flow     Flow
	Step     Step
	Template string
	Values   map[string]string
	Errors   gateway.FieldErrors
	Progress Progress
}

// GetResult is the outcome of rendering a step: either a page or a redirect
// to another step in the same flow.
type GetResult struct {
	Page     *Page
	Redirect Step
}

// PostResult is the outcome of a step submission. Exactly one of Page,
// Redirect, Completed or Failed is set. Cookies carry session-linking
// cookies from the identity service that must be copied onto the response.
type PostResult struct {
	Page         *Page
	Redirect     Step
	RedirectFlow Flow
	Completed    *Completion
	Failed       bool
	Cookies      []*http.Cookie
}

// Completion is the terminal success of a flow.
type Completion struct {
	RedirectTo string
}

// Get renders a step or redirects. It never fires side effects and never
// alters recorded step data, so re-rendering is safe.
func (e *Engine) Get(ctx context.Context, flow Flow, step Step, ident *gateway.User, sess *session.Session) (GetResult, error) {
	idx := stepIndex(flow, step)
	if idx < 0 {
		return GetResult{}, dErrors.New(dErrors.CodeNotFound, "unknown enrolment step")
	}
	env := Env{Identity: ident, Session: sess, Flags: e.flags, Requested: step}

	// Conditions redirect backwards only; forward jumps via direct URLs are
	// never honoured.
	if !applies(step, env) {
		redirect := previousApplicable(flow, idx, env)
		if redirect == "" {
			redirect = firstApplicable(flow, env)
		}
		return GetResult{Redirect: redirect}, nil
	}

	// Rewind guard: a mid-flow URL without data for the preceding step means
	// the server-side session was reset; restart from the top and drop any
	// entries recorded past the rewind point.
	if rewound(flow, step, idx, env, sess) {
		first, err := e.rewind(ctx, flow, step, env, sess)
		if err != nil {
			return GetResult{}, err
		}
		return GetResult{Redirect: first}, nil
	}

	sess.CurrentStep = string(step)
	if err := e.sessions.Save(ctx, sess); err != nil {
		return GetResult{}, err
	}

	return GetResult{Page: e.page(flow, step, env, sess.Values(string(step)), fieldErrorsFrom(sess.RemoteError(string(step))))}, nil
}

// Post validates and records a step submission, fires its side effect and
// advances the flow.
//
// Known gap: two concurrent submissions of the same step are not coordinated;
// the stored remote-error marker only prevents duplicate side effects across
// sequential requests.
func (e *Engine) Post(ctx context.Context, flow Flow, step Step, ident *gateway.User, sess *session.Session, form url.Values) (PostResult, error) {
	idx := stepIndex(flow, step)
	if idx < 0 {
		return PostResult{}, dErrors.New(dErrors.CodeNotFound, "unknown enrolment step")
	}
	env := Env{Identity: ident, Session: sess, Flags: e.flags, Requested: step}

	if !applies(step, env) {
		redirect := previousApplicable(flow, idx, env)
		if redirect == "" {
			redirect = firstApplicable(flow, env)
		}
		return PostResult{Redirect: redirect, RedirectFlow: flow}, nil
	}

	// A POST to a mid-flow step with no data for the preceding step is a
	// forged or stale submission; restart instead of processing it.
	if rewound(flow, step, idx, env, sess) {
		first, err := e.rewind(ctx, flow, step, env, sess)
		if err != nil {
			return PostResult{}, err
		}
		return PostResult{Redirect: first, RedirectFlow: flow}, nil
	}

	schema := schemas[step]
	clean, errs := schema.Validate(form)
	if errs != nil {
		e.metrics.IncStepSubmission(string(flow), string(step), "invalid")
		return PostResult{Page: e.page(flow, step, env, formValues(form, schema), errs)}, nil
	}

	if finish, ok := finishers[step]; ok {
		ferrs, err := finish(e, ctx, env, clean)
		if err != nil {
			return PostResult{}, err
		}
		if len(ferrs) > 0 {
			// The finisher may have cached lookup results on the session;
			// persist them so a re-submission does not repeat the remote call.
			if err := e.sessions.Save(ctx, sess); err != nil {
				return PostResult{}, err
			}
			e.metrics.IncStepSubmission(string(flow), string(step), "invalid")
			return PostResult{Page: e.page(flow, step, env, formValues(form, schema), ferrs)}, nil
		}
	}

	// Business-type selection routes into the chosen flow variant.
	if step == StepBusinessType {
		if selected := Flow(clean["choice"]); selected != flow {
			sess.Flow = string(selected)
			flow = selected
			idx = stepIndex(flow, StepBusinessType)
		}
	}

	// Editing the searched company invalidates the name the details step copied
	// from it, so the edited name shows instead of the stale one.
	if step == StepCompanySearch {
		if prev := sess.Values(string(step)); prev != nil && prev["company_name"] != clean["company_name"] {
			sess.ClearValue(string(StepBusinessDetails), "company_name")
		}
	}

	sess.SetValues(string(step), clean)

	var cookies []*http.Cookie
	if effect, ok := effects[step]; ok {
		out, err := effect(e, ctx, env, clean)
		if err != nil {
			e.metrics.IncStepSubmission(string(flow), string(step), "error")
			return PostResult{}, err
		}
		for _, f := range out.clear {
			sess.ClearValue(string(step), f)
		}
		if out.failure != nil {
			// The remote call already happened and must not be replayed on
			// re-render, so the failure is stored alongside the step's data.
			sess.SetRemoteError(string(step), out.failure)
			if err := e.sessions.Save(ctx, sess); err != nil {
				return PostResult{}, err
			}
			e.metrics.IncStepSubmission(string(flow), string(step), "remote_invalid")
			return PostResult{Page: e.page(flow, step, env, sess.Values(string(step)), fieldErrorsFrom(out.failure))}, nil
		}
		cookies = out.cookies
	}

	sess.ClearRemoteError(string(step))
	e.metrics.IncStepSubmission(string(flow), string(step), "ok")

	next := nextApplicable(flow, idx, env)
	if next == "" {
		completion, failed, err := e.complete(ctx, flow, env, sess)
		if err != nil {
			return PostResult{}, err
		}
		if err := e.sessions.Delete(ctx, sess.ID); err != nil {
			// The enrolment already completed remotely; an expired session
			// record is harmless.
			e.logger.WarnContext(ctx, "session cleanup failed",
				"session_id", sess.ID,
				"error", err.Error(),
			)
		}
		if failed {
			return PostResult{Failed: true, Cookies: cookies}, nil
		}
		return PostResult{Completed: completion, Cookies: cookies}, nil
	}

	sess.CurrentStep = string(next)
	if err := e.sessions.Save(ctx, sess); err != nil {
		return PostResult{}, err
	}
	return PostResult{Redirect: next, RedirectFlow: flow, Cookies: cookies}, nil
}

// rewound reports whether a mid-flow step was reached without the preceding
// applicable step having been submitted, meaning the session was reset or the
// request skipped ahead.
func rewound(flow Flow, step Step, idx int, env Env, sess *session.Session) bool {
	if step == firstApplicable(flow, env) {
		return false
	}
	prev := previousApplicable(flow, idx, env)
	return prev != "" && !sess.HasStep(string(prev))
}

// rewind restarts the flow at its first applicable step, dropping entries
// recorded past the requested step.
func (e *Engine) rewind(ctx context.Context, flow Flow, step Step, env Env, sess *session.Session) (Step, error) {
	first := firstApplicable(flow, env)
	sess.ClearFrom(string(step))
	sess.CurrentStep = string(first)
	if err := e.sessions.Save(ctx, sess); err != nil {
		return "", err
	}
	return first, nil
}

// complete assembles the whitelisted draft and performs the flow's terminal
// remote call. The bool result reports terminal failure (expired invitation
// or pre-verification key).
func (e *Engine) complete(ctx context.Context, flow Flow, env Env, sess *session.Session) (*Completion, bool, error) {
	draft := BuildDraft(flow, sess)
	applicant := applicantEmail(env, sess)

	switch flow {
	case FlowPreVerified:
		result, err := e.directory.ClaimPreVerified(ctx, sess.Extra.EnrollmentKey, draft)
		if err != nil {
			return nil, false, err
		}
		if !result.OK() {
			return nil, true, nil
		}

	case FlowCollaborator:
		result, err := e.directory.AcceptInvite(ctx, sess.Extra.InviteKey, draft)
		if err != nil {
			return nil, false, err
		}
		if !result.OK() {
			return nil, true, nil
		}

	case FlowResend:
		// Verification already happened as the step side effect; there is no
		// profile to create.

	case FlowCompaniesHouse:
		number := draft["company_number"]
		claimed, err := e.directory.CompanyClaimed(ctx, number)
		if err != nil {
			return nil, false, err
		}
		if claimed {
			result, err := e.directory.RequestCollaboration(ctx, number, applicant)
			if err != nil {
				return nil, false, err
			}
			if !result.OK() {
				return nil, false, dErrors.New(dErrors.CodeInternal, "collaboration request rejected")
			}
			if err := e.notify.SendCollaborationRequested(ctx, number, applicant); err != nil {
				return nil, false, err
			}
		} else if err := e.createProfile(ctx, draft); err != nil {
			return nil, false, err
		}

	default:
		if err := e.createProfile(ctx, draft); err != nil {
			return nil, false, err
		}
	}

	e.metrics.IncEnrolmentCompleted(string(flow))

	target := "/enrol/success/"
	if sess.Extra.Intent == IntentCreateProfile {
		target = "/business-profile/"
	}
	return &Completion{RedirectTo: target}, false, nil
}

func (e *Engine) createProfile(ctx context.Context, draft gateway.ProfileDraft) error {
	result, err := e.directory.CreateProfile(ctx, draft)
	if err != nil {
		return err
	}
	if !result.OK() {
		return dErrors.New(dErrors.CodeInternal, "profile creation rejected")
	}
	return nil
}

func (e *Engine) page(flow Flow, step Step, env Env, values map[string]string, errs gateway.FieldErrors) *Page {
	if values == nil {
		values = map[string]string{}
	}
	// Business details prefill from the company the user picked; once the
	// step has its own stored or submitted value that value wins.
	if step == StepBusinessDetails && values["company_name"] == "" {
		if name := env.Session.Values(string(StepCompanySearch))["company_name"]; name != "" {
			values["company_name"] = name
		}
	}
	return &Page{
		Flow:     flow,
		Step:     step,
		Template: templates[step],
		Values:   values,
		Errors:   errs,
		Progress: ProgressFor(flow, step, env),
	}
}

// formValues extracts submitted values for re-display after a validation
// failure. Passwords are never echoed back.
func formValues(form url.Values, schema Schema) map[string]string {
	values := map[string]string{}
	for _, f := range schema.Fields {
		if f.Kind == KindPassword {
			continue
		}
		if v := form.Get(f.Name); v != "" {
			values[f.Name] = v
		}
	}
	return values
}

func fieldErrorsFrom(fields map[string][]string) gateway.FieldErrors {
	if fields == nil {
		return nil
	}
	return gateway.FieldErrors(fields)
}

// applicantEmail resolves the email addressing the current enrolment: the
// account created in this wizard, or the already-authenticated identity.
func applicantEmail(env Env, sess *session.Session) string {
	if email := sess.Values(string(StepUserAccount))["email"]; email != "" {
		return email
	}
	if email := sess.Values(string(StepResend))["email"]; email != "" {
		return email
	}
	if env.Identity != nil {
		return env.Identity.Email
	}
	return ""
}
