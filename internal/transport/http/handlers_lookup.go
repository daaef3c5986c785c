package httptransport

import (
	"net/http"

	dErrors "bizdir/pkg/domain-errors"
	"bizdir/pkg/platform/httputil"
)

// handleCompanySearch backs the company-name typeahead on the search step.
func (h *Handler) handleCompanySearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	if term == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "term parameter is required"))
		return
	}
	companies, err := h.lookup.SearchCompanies(r.Context(), term)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, companies)
}

// handleAddressSearch backs the postcode lookup on the manual address step.
func (h *Handler) handleAddressSearch(w http.ResponseWriter, r *http.Request) {
	postcode := r.URL.Query().Get("postcode")
	if postcode == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "postcode parameter is required"))
		return
	}
	addresses, err := h.lookup.SearchAddresses(r.Context(), postcode)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, addresses)
}
