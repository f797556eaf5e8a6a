package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dockquery/dockquery/internal/observability"
	"github.com/dockquery/dockquery/internal/pipeline"
)

type queryRequest struct {
	Prompt string `json:"prompt"`
}

type queryResponse struct {
	Status           string `json:"status"`
	OriginalQuestion string `json:"original_question"`
	GeneratedQuery   string `json:"generated_query"`
	SQLQuery         string `json:"sql_query"`
	QueryResults     string `json:"query_results"`
	Description      string `json:"description"`
}

type errorResponse struct {
	Error          string `json:"error"`
	GeneratedQuery string `json:"generated_query,omitempty"`
	SQLQuery       string `json:"sql_query,omitempty"`
}

func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Pipeline == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "query pipeline is not configured"})
		return
	}

	var request queryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing 'prompt' in JSON payload"})
		return
	}
	if strings.TrimSpace(request.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing 'prompt' in JSON payload"})
		return
	}

	answer, err := deps.Pipeline.Run(r.Context(), request.Prompt)
	if err != nil {
		writePipelineError(deps, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Status:           "success",
		OriginalQuestion: answer.Question,
		GeneratedQuery:   answer.GeneratedText,
		SQLQuery:         answer.SQL,
		QueryResults:     answer.Results,
		Description:      answer.Description,
	})
}

func writePipelineError(deps Dependencies, w http.ResponseWriter, r *http.Request, err error) {
	var stageErr *pipeline.Error
	if !errors.As(err, &stageErr) {
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "unexpected pipeline error",
				slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
				slog.Any("error", err),
			)
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Unexpected error: " + err.Error()})
		return
	}

	if deps.Logger != nil {
		deps.Logger.WarnContext(r.Context(), "pipeline request failed",
			slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
			slog.String("stage", string(stageErr.Stage)),
			slog.String("message", stageErr.Message),
		)
	}

	body := errorResponse{
		Error:          errorMessage(stageErr),
		GeneratedQuery: stageErr.GeneratedText,
		SQLQuery:       stageErr.SQL,
	}
	writeJSON(w, statusForStage(stageErr.Stage), body)
}

func errorMessage(stageErr *pipeline.Error) string {
	if stageErr.Err != nil {
		return stageErr.Message + ": " + stageErr.Err.Error()
	}
	return stageErr.Message
}

// statusForStage maps pipeline stages to HTTP status classes: input and
// validation problems are the caller's fault, everything else is ours.
func statusForStage(stage pipeline.Stage) int {
	switch stage {
	case pipeline.StageMalformedInput, pipeline.StageValidation, pipeline.StageExtraction:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
