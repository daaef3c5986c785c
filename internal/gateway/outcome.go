// Package gateway wraps the four remote collaborators (identity SSO, company
// registry, directory persistence, notification) behind typed clients. Every
// call returns a classified outcome rather than a raw transport error so
// callers branch on status instead of assuming success.
package gateway

import "encoding/json"

// Outcome classifies a remote response into the four classes callers handle.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeServerError Outcome = "server_error"
)

// FieldErrors maps form field names to error messages, mirroring the JSON
// error maps the collaborator services return for client validation errors.
type FieldErrors map[string][]string

// Has reports whether the field carries at least one error.
func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

// Add appends a message for a field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Only reports whether errors are present for exactly the given field and no
// other.
func (f FieldErrors) Only(field string) bool {
	return len(f) == 1 && f.Has(field)
}

// Result is the classified outcome of one remote call. Fields is populated
// only for OutcomeInvalid.
type Result struct {
	Outcome Outcome
	Fields  FieldErrors
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Outcome == OutcomeOK }

func okResult() Result          { return Result{Outcome: OutcomeOK} }
func notFoundResult() Result    { return Result{Outcome: OutcomeNotFound} }
func serverErrorResult() Result { return Result{Outcome: OutcomeServerError} }

// classify maps an HTTP status plus response body to a Result. Collaborators
// return field error maps for 400s, either {"field": ["msg"]} or
// {"field": "msg"}; both shapes are accepted.
func classify(status int, body []byte) Result {
	switch {
	case status >= 200 && status < 300:
		return okResult()
	case status == 404:
		return notFoundResult()
	case status >= 400 && status < 500:
		return Result{Outcome: OutcomeInvalid, Fields: parseFieldErrors(body)}
	default:
		return serverErrorResult()
	}
}

func parseFieldErrors(body []byte) FieldErrors {
	fields := FieldErrors{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return fields
	}
	for field, msg := range raw {
		var list []string
		if err := json.Unmarshal(msg, &list); err == nil {
			fields[field] = list
			continue
		}
		var single string
		if err := json.Unmarshal(msg, &single); err == nil {
			fields[field] = []string{single}
		}
	}
	return fields
}
