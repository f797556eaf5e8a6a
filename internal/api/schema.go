package api

import "net/http"

// handleSchema exposes the schema description the pipeline hands to the
// generation backend. Useful for checking what the model actually sees.
func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Schema == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "schema describer is not configured"})
		return
	}

	description, err := deps.Schema.Describe(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load schema description: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schema": description})
}
