package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dockquery/dockquery/internal/auth"
	"github.com/dockquery/dockquery/internal/config"
	"github.com/dockquery/dockquery/internal/dbexec"
	"github.com/dockquery/dockquery/internal/genai"
	"github.com/dockquery/dockquery/internal/pipeline"
	"github.com/dockquery/dockquery/internal/schema"
)

func TestQueryEndpointSuccess(t *testing.T) {
	h := newTestHandler(t, handlerOptions{
		generated: []string{
			"```sql\nSELECT * FROM cradles LIMIT 3\n```",
			"Three cradles are shown.",
		},
		result: dbexec.Result{Rows: [][]any{{"c-1"}, {"c-2"}, {"c-3"}}, Text: "[('c-1'), ('c-2'), ('c-3')]"},
	})

	rr := postQuery(t, h, `{"prompt": "show top 3 cradles"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	var body queryResponse
	decodeBody(t, rr, &body)
	if body.Status != "success" {
		t.Fatalf("status field = %q", body.Status)
	}
	if body.SQLQuery != "SELECT * FROM cradles LIMIT 3" {
		t.Fatalf("sql_query = %q", body.SQLQuery)
	}
	if body.OriginalQuestion != "show top 3 cradles" {
		t.Fatalf("original_question = %q", body.OriginalQuestion)
	}
	if body.QueryResults != "[('c-1'), ('c-2'), ('c-3')]" {
		t.Fatalf("query_results = %q", body.QueryResults)
	}
	if body.Description != "Three cradles are shown." {
		t.Fatalf("description = %q", body.Description)
	}
}

func TestQueryEndpointRequiresPrompt(t *testing.T) {
	h := newTestHandler(t, handlerOptions{})

	for _, payload := range []string{`{}`, `{"prompt": "  "}`, `not json`, ``} {
		rr := postQuery(t, h, payload)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("payload %q: status = %d, want 400", payload, rr.Code)
		}
		var body map[string]any
		decodeBody(t, rr, &body)
		if _, ok := body["error"]; !ok {
			t.Fatalf("payload %q: body = %v, want error key", payload, body)
		}
		if _, ok := body["status"]; ok {
			t.Fatalf("payload %q: error body must not carry status", payload)
		}
	}
}

func TestQueryEndpointRejectsDestructiveSQL(t *testing.T) {
	h := newTestHandler(t, handlerOptions{
		generated: []string{"DROP TABLE vessels;"},
	})

	rr := postQuery(t, h, `{"prompt": "drop the vessels table"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var body errorResponse
	decodeBody(t, rr, &body)
	if body.Error == "" {
		t.Fatal("expected error message")
	}
	if body.SQLQuery != "DROP TABLE vessels" {
		t.Fatalf("sql_query = %q", body.SQLQuery)
	}
	if body.GeneratedQuery != "DROP TABLE vessels;" {
		t.Fatalf("generated_query = %q", body.GeneratedQuery)
	}
}

func TestQueryEndpointExecutionFailureEchoesArtifacts(t *testing.T) {
	h := newTestHandler(t, handlerOptions{
		generated: []string{`SELECT * FROM "missing"`},
		execErr:   errors.New(`relation "missing" does not exist`),
	})

	rr := postQuery(t, h, `{"prompt": "list all missing things"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var body errorResponse
	decodeBody(t, rr, &body)
	if !strings.Contains(body.Error, "does not exist") {
		t.Fatalf("error = %q", body.Error)
	}
	if body.GeneratedQuery != `SELECT * FROM "missing"` || body.SQLQuery != `SELECT * FROM "missing"` {
		t.Fatalf("artifacts = %+v", body)
	}
}

func TestQueryEndpointGenerationFailureIs500(t *testing.T) {
	h := newTestHandler(t, handlerOptions{genErr: errors.New("backend unavailable")})

	rr := postQuery(t, h, `{"prompt": "list all vessels"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestQueryEndpointHonorsAuth(t *testing.T) {
	validator, err := auth.NewStaticAPIKeyValidator("k1:ops:query")
	if err != nil {
		t.Fatalf("validator setup: %v", err)
	}
	h := newTestHandler(t, handlerOptions{
		authRequired: true,
		authMW:       auth.Middleware(nil, validator),
		generated: []string{
			`SELECT * FROM "cradles"`,
			"Cradles listed.",
		},
		result: dbexec.Result{Rows: [][]any{{"c-1"}}, Text: "[('c-1')]"},
	})

	rr := postQuery(t, h, `{"prompt": "list all cradles"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"prompt": "list all cradles"}`))
	req.Header.Set("X-API-Key", "k1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestSchemaEndpointReturnsDescription(t *testing.T) {
	h := newTestHandler(t, handlerOptions{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	var body map[string]string
	decodeBody(t, rr, &body)
	if !strings.Contains(body["schema"], `CREATE TABLE "cradles"`) {
		t.Fatalf("schema = %q", body["schema"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(t, handlerOptions{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

type handlerOptions struct {
	generated    []string
	genErr       error
	result       dbexec.Result
	execErr      error
	authRequired bool
	authMW       func(http.Handler) http.Handler
}

func newTestHandler(t *testing.T, opts handlerOptions) http.Handler {
	t.Helper()

	env := map[string]string{}
	if opts.authRequired {
		env["DOCKQUERY_AUTH_REQUIRED"] = "true"
	}
	cfg, err := config.Load("dockquery-api", func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}

	describer := schema.DescriberFunc(func(context.Context) (string, error) {
		return `CREATE TABLE "cradles" ("id" character varying(100) NOT NULL)`, nil
	})
	p, err := pipeline.New(
		describer,
		&scriptedGenerator{responses: opts.generated, err: opts.genErr},
		&scriptedExecutor{result: opts.result, err: opts.execErr},
		pipeline.Config{DefaultLimit: 10, UnlimitedRowCap: 1000, SummarySampleRows: 5},
		nil,
	)
	if err != nil {
		t.Fatalf("pipeline setup: %v", err)
	}

	return NewHandler(cfg, Dependencies{
		Pipeline:       p,
		Schema:         describer,
		AuthMiddleware: opts.authMW,
	})
}

func postQuery(t *testing.T, h http.Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

type scriptedGenerator struct {
	responses []string
	calls     int
	err       error
}

func (s *scriptedGenerator) Name() string { return "scripted" }

func (s *scriptedGenerator) Generate(_ context.Context, _ genai.Prompt) (string, error) {
	call := s.calls
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if call >= len(s.responses) {
		return "", errors.New("scriptedGenerator: no response")
	}
	return s.responses[call], nil
}

type scriptedExecutor struct {
	result dbexec.Result
	err    error
}

func (s *scriptedExecutor) Run(_ context.Context, _ string) (dbexec.Result, error) {
	if s.err != nil {
		return dbexec.Result{}, s.err
	}
	return s.result, nil
}
