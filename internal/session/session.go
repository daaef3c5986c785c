// Package session holds the per-browser wizard session: the only state this
// application owns. Sessions live in an external backend (Redis) and are
// serialized as one JSON value per browser session.
package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"bizdir/internal/gateway"
)

// CookieName is the browser cookie carrying the wizard session id.
const CookieName = "enrol_session"

// remoteErrorKey is the reserved key under which a recoverable remote
// validation failure is stored alongside a step's data. Its presence marks
// that the step's side effect already fired and must not be replayed on
// re-render.
const remoteErrorKey = "__remote_error__"

// Extra holds the short-lived flags accumulated outside step data.
type Extra struct {
	IsAnonymousIngress bool   `json:"is_anonymous_ingress"`
	IsNewEnrollment    bool   `json:"is_new_enrollment"`
	InviteKey          string `json:"invite_key,omitempty"`
	EnrollmentKey      string `json:"enrollment_key,omitempty"`
	// Intent records why the user entered the wizard; "create-profile"
	// redirects to the business profile page on completion.
	Intent string `json:"intent,omitempty"`
}

// StepEntry is one successfully submitted step's validated field values.
// Insertion order is submission order.
type StepEntry struct {
	Step   string            `json:"step"`
	Values map[string]string `json:"values"`
}

// Session is the wizard state owned exclusively by one browser session.
//
// Invariant: Steps holds entries only for steps the user has successfully
// submitted; rewinding past a step removes its entry.
type Session struct {
	ID          string                     `json:"id"`
	Flow        string                     `json:"flow"`
	CurrentStep string                     `json:"current_step"`
	Steps       []StepEntry                `json:"steps"`
	Extra       Extra                      `json:"extra"`
	Companies   map[string]gateway.Company `json:"companies,omitempty"`
	// CompanyMisses records numbers the registry reported no record for, so a
	// re-submission of the same number does not repeat the lookup.
	CompanyMisses map[string]bool `json:"company_misses,omitempty"`
	DeviceName    string          `json:"device_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// New creates a fresh session for the given flow.
func New(flow string, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Flow:      flow,
		CreatedAt: now,
	}
}

// HasStep reports whether the step has been successfully submitted.
func (s *Session) HasStep(step string) bool {
	return s.entry(step) != nil
}

// Values returns the stored field values for a step, nil when absent. The
// reserved error key is excluded.
func (s *Session) Values(step string) map[string]string {
	e := s.entry(step)
	if e == nil {
		return nil
	}
	values := make(map[string]string, len(e.Values))
	for k, v := range e.Values {
		if k == remoteErrorKey {
			continue
		}
		values[k] = v
	}
	return values
}

// SetValues records a step's validated values, replacing in place when the
// step was already submitted so submission order is preserved.
func (s *Session) SetValues(step string, values map[string]string) {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	if e := s.entry(step); e != nil {
		copied[remoteErrorKey] = e.Values[remoteErrorKey]
		if copied[remoteErrorKey] == "" {
			delete(copied, remoteErrorKey)
		}
		e.Values = copied
		return
	}
	s.Steps = append(s.Steps, StepEntry{Step: step, Values: copied})
}

// ClearValue removes one field from a step's stored values, e.g. a consumed
// one-time code.
func (s *Session) ClearValue(step, field string) {
	if e := s.entry(step); e != nil {
		delete(e.Values, field)
	}
}

// ClearFrom removes the named step's entry and every entry submitted after
// it, used when the wizard rewinds past already-submitted steps.
func (s *Session) ClearFrom(step string) {
	for i := range s.Steps {
		if s.Steps[i].Step == step {
			s.Steps = s.Steps[:i]
			return
		}
	}
}

// SetRemoteError stores a recoverable remote validation failure alongside the
// step's data under the reserved error key.
func (s *Session) SetRemoteError(step string, fields map[string][]string) {
	encoded, err := json.Marshal(fields)
	if err != nil {
		return
	}
	e := s.entry(step)
	if e == nil {
		s.Steps = append(s.Steps, StepEntry{Step: step, Values: map[string]string{}})
		e = &s.Steps[len(s.Steps)-1]
	}
	e.Values[remoteErrorKey] = string(encoded)
}

// RemoteError returns the stored remote validation failure for a step, nil
// when none is recorded.
func (s *Session) RemoteError(step string) map[string][]string {
	e := s.entry(step)
	if e == nil {
		return nil
	}
	raw, ok := e.Values[remoteErrorKey]
	if !ok {
		return nil
	}
	var fields map[string][]string
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil
	}
	return fields
}

// ClearRemoteError removes a stored remote failure once the step advances.
func (s *Session) ClearRemoteError(step string) {
	if e := s.entry(step); e != nil {
		delete(e.Values, remoteErrorKey)
	}
}

// CacheCompany stores a registry lookup so repeated renders within this
// session do not repeat the remote call.
func (s *Session) CacheCompany(c gateway.Company) {
	if s.Companies == nil {
		s.Companies = make(map[string]gateway.Company)
	}
	s.Companies[c.Number] = c
}

// CachedCompany returns a previously looked-up company.
func (s *Session) CachedCompany(number string) (gateway.Company, bool) {
	c, ok := s.Companies[number]
	return c, ok
}

// CacheCompanyMiss records a registry lookup that found no company.
func (s *Session) CacheCompanyMiss(number string) {
	if s.CompanyMisses == nil {
		s.CompanyMisses = make(map[string]bool)
	}
	s.CompanyMisses[number] = true
}

// CachedCompanyMiss reports whether a lookup for the number already came back
// empty this session.
func (s *Session) CachedCompanyMiss(number string) bool {
	return s.CompanyMisses[number]
}

func (s *Session) entry(step string) *StepEntry {
	for i := range s.Steps {
		if s.Steps[i].Step == step {
			return &s.Steps[i]
		}
	}
	return nil
}
