package httptransport

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bizdir/internal/gateway"
	"bizdir/internal/session"
	"bizdir/internal/wizard"
	dErrors "bizdir/pkg/domain-errors"
	"bizdir/pkg/requestcontext"
)

func (h *Handler) handleStepGet(w http.ResponseWriter, r *http.Request) {
	flow, step, ok := h.parseTarget(w, r)
	if !ok {
		return
	}

	ident, err := h.resolveIdentity(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	sess, err := h.loadOrCreateSession(w, r, flow, ident)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	res, err := h.engine.Get(r.Context(), flow, step, ident, sess)
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	if res.Redirect != "" {
		http.Redirect(w, r, stepURL(flow, res.Redirect), http.StatusFound)
		return
	}
	h.renderer.RenderStep(w, res.Page)
}

func (h *Handler) handleStepPost(w http.ResponseWriter, r *http.Request) {
	flow, step, ok := h.parseTarget(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderStatic(w, http.StatusBadRequest, "error")
		return
	}

	ident, err := h.resolveIdentity(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	sess, err := h.loadOrCreateSession(w, r, flow, ident)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	res, err := h.engine.Post(r.Context(), flow, step, ident, sess, r.PostForm)
	if err != nil {
		h.engineError(w, r, err)
		return
	}

	for _, c := range res.Cookies {
		http.SetCookie(w, c)
	}

	switch {
	case res.Completed != nil:
		expireSessionCookie(w)
		http.Redirect(w, r, res.Completed.RedirectTo, http.StatusFound)
	case res.Failed:
		expireSessionCookie(w)
		http.Redirect(w, r, "/enrol/failure/", http.StatusFound)
	case res.Redirect != "":
		http.Redirect(w, r, stepURL(res.RedirectFlow, res.Redirect), http.StatusFound)
	default:
		h.renderer.RenderStep(w, res.Page)
	}
}

func (h *Handler) handleSuccess(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderStatic(w, http.StatusOK, "success")
}

func (h *Handler) handleFailure(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderStatic(w, http.StatusOK, "failure")
}

func (h *Handler) parseTarget(w http.ResponseWriter, r *http.Request) (wizard.Flow, wizard.Step, bool) {
	flow, err := wizard.ParseFlow(chi.URLParam(r, "flow"))
	if err != nil {
		h.renderer.RenderStatic(w, http.StatusNotFound, "error")
		return "", "", false
	}
	return flow, wizard.Step(chi.URLParam(r, "step")), true
}

// resolveIdentity asks the SSO who the caller is, fresh on every request.
func (h *Handler) resolveIdentity(r *http.Request) (*gateway.User, error) {
	cookie, err := r.Cookie(SSOCookieName)
	if err != nil {
		return nil, nil
	}
	return h.identity.SessionUser(r.Context(), cookie.Value)
}

// loadOrCreateSession resolves the wizard session for this browser, starting a
// fresh one when none exists or the cookie points at a different flow. Ingress
// query parameters are recorded once, at creation.
func (h *Handler) loadOrCreateSession(w http.ResponseWriter, r *http.Request, flow wizard.Flow, ident *gateway.User) (*session.Session, error) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		sess, err := h.sessions.Get(r.Context(), cookie.Value)
		switch {
		case err == nil && sess.Flow == string(flow):
			return sess, nil
		case err != nil && !errors.Is(err, session.ErrNotFound):
			return nil, err
		}
	}

	sess := session.New(string(flow), requestcontext.Now(r.Context()))
	sess.DeviceName = requestcontext.DeviceName(r.Context())
	sess.Extra.IsAnonymousIngress = ident == nil
	sess.Extra.Intent = r.URL.Query().Get("intent")
	sess.Extra.InviteKey = r.URL.Query().Get("invite_key")
	sess.Extra.EnrollmentKey = r.URL.Query().Get("key")

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func expireSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func stepURL(flow wizard.Flow, step wizard.Step) string {
	return "/enrol/" + string(flow) + "/" + string(step) + "/"
}

func (h *Handler) engineError(w http.ResponseWriter, r *http.Request, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeNotFound {
		h.renderer.RenderStatic(w, http.StatusNotFound, "error")
		return
	}
	h.serverError(w, r, err)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "enrolment request failed",
		"request_id", requestcontext.RequestID(r.Context()),
		"path", r.URL.Path,
		"error", err.Error(),
	)
	h.renderer.RenderStatic(w, http.StatusInternalServerError, "error")
}
