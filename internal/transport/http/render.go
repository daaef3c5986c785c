package httptransport

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"bizdir/internal/wizard"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Renderer executes the embedded HTML templates. Templates are parsed once at
// startup so a malformed template fails the process, not a request.
type Renderer struct {
	templates *template.Template
	logger    *slog.Logger
}

func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t, logger: logger}, nil
}

type progressItem struct {
	Label   string
	Current bool
}

// stepView is the data every step template renders with.
type stepView struct {
	Title    string
	Action   string
	Values   map[string]string
	Errors   map[string][]string
	Progress []progressItem
}

// RenderStep renders a wizard page. Validation failures still answer 200; the
// page itself carries the errors.
func (r *Renderer) RenderStep(w http.ResponseWriter, page *wizard.Page) {
	items := make([]progressItem, 0, len(page.Progress.Labels))
	for i, label := range page.Progress.Labels {
		items = append(items, progressItem{Label: label, Current: i+1 == page.Progress.Number})
	}
	view := stepView{
		Title:    pageTitle(page),
		Action:   fmt.Sprintf("/enrol/%s/%s/", page.Flow, page.Step),
		Values:   page.Values,
		Errors:   page.Errors,
		Progress: items,
	}
	r.render(w, http.StatusOK, page.Template, view)
}

// RenderStatic renders one of the terminal pages (success, failure, error).
func (r *Renderer) RenderStatic(w http.ResponseWriter, status int, name string) {
	r.render(w, status, name, nil)
}

func (r *Renderer) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		// Headers are already written; all we can do is log.
		r.logger.Error("render template", "template", name, "error", err.Error())
	}
}

func pageTitle(page *wizard.Page) string {
	if i, total := page.Progress.Number, page.Progress.Total; i > 0 && total > 0 {
		return fmt.Sprintf("%s (step %d of %d)", stepTitle(page.Step), i, total)
	}
	return stepTitle(page.Step)
}

func stepTitle(step wizard.Step) string {
	switch step {
	case wizard.StepBusinessType:
		return "What kind of business are you?"
	case wizard.StepUserAccount:
		return "Create your account"
	case wizard.StepVerification:
		return "Confirm your email address"
	case wizard.StepResend:
		return "Resend your confirmation code"
	case wizard.StepCompanySearch:
		return "Find your company"
	case wizard.StepAddressLookup:
		return "Your business address"
	case wizard.StepBusinessDetails:
		return "Tell us about your business"
	case wizard.StepPersonalDetails:
		return "Tell us about yourself"
	default:
		return "Enrolment"
	}
}
