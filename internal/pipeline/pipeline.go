// Package pipeline turns a free-text question into a validated read-only SQL
// statement, executes it, and describes the result. Each run is stateless;
// the only shared state is the long-lived collaborator clients.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dockquery/dockquery/internal/dbexec"
	"github.com/dockquery/dockquery/internal/genai"
	"github.com/dockquery/dockquery/internal/observability"
	"github.com/dockquery/dockquery/internal/schema"
)

type Config struct {
	// DefaultLimit applies when the question mentions a limit keyword without
	// a number.
	DefaultLimit int
	// UnlimitedRowCap is the sentinel passed to the generation backend when
	// no limit was requested, so prompt templating never truncates
	// unlimited-intent queries.
	UnlimitedRowCap int
	// SummarySampleRows bounds how many rows feed the summarization prompt.
	SummarySampleRows int
}

type Pipeline struct {
	schema    schema.Describer
	generator genai.Generator
	executor  dbexec.Executor
	cfg       Config
	logger    *slog.Logger
}

func New(describer schema.Describer, generator genai.Generator, executor dbexec.Executor, cfg Config, logger *slog.Logger) (*Pipeline, error) {
	if describer == nil {
		return nil, fmt.Errorf("schema describer is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.UnlimitedRowCap <= 0 {
		cfg.UnlimitedRowCap = 1000
	}
	if cfg.SummarySampleRows <= 0 {
		cfg.SummarySampleRows = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		schema:    describer,
		generator: generator,
		executor:  executor,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Answer is the assembled success result of one pipeline run.
type Answer struct {
	Question      string
	GeneratedText string
	SQL           string
	Results       string
	Description   string
}

// Run executes the full pipeline for one question. On failure it returns a
// *Error tagged with the failing stage; summarization failures are absorbed
// into a placeholder description and never fail the run.
func (p *Pipeline) Run(ctx context.Context, question string) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, p.fail(&Error{Stage: StageMalformedInput, Message: "question is empty"})
	}

	hint := ExtractLimit(question, p.cfg.DefaultLimit)
	rowCap := p.cfg.UnlimitedRowCap
	if hint.Requested {
		rowCap = hint.Value
	}

	schemaText, err := p.schema.Describe(ctx)
	if err != nil {
		return Answer{}, p.fail(&Error{Stage: StageGeneration, Message: "failed to load schema description", Err: err})
	}

	generated, err := p.generate(ctx, "synthesis", genai.BuildSQLPrompt(question, schemaText, rowCap))
	if err != nil {
		return Answer{}, p.fail(&Error{Stage: StageGeneration, Message: "failed to generate query", Err: err})
	}
	p.logger.DebugContext(ctx, "query generated",
		slog.String("backend", p.generator.Name()),
		slog.String("generated", generated),
	)

	sqlText := ExtractSQL(generated)
	if sqlText == "" {
		return Answer{}, p.fail(&Error{Stage: StageExtraction, Message: "generated text contains no SQL", GeneratedText: generated})
	}
	if !ValidStatement(sqlText) {
		return Answer{}, p.fail(&Error{Stage: StageValidation, Message: "generated query is not valid read-only SQL", GeneratedText: generated, SQL: sqlText})
	}

	sqlText = ReconcileLimit(sqlText, hint)
	p.logger.DebugContext(ctx, "statement normalized", slog.String("sql", sqlText))

	execStart := time.Now()
	result, err := p.executor.Run(ctx, sqlText)
	if err != nil {
		return Answer{}, p.fail(&Error{Stage: StageExecution, Message: "error executing query", GeneratedText: generated, SQL: sqlText, Err: err})
	}
	observability.ObserveQueryExecution(time.Since(execStart))

	description := p.describe(ctx, question, sqlText, result)

	observability.ObservePipelineSuccess()
	return Answer{
		Question:      question,
		GeneratedText: generated,
		SQL:           sqlText,
		Results:       result.Text,
		Description:   description,
	}, nil
}

func (p *Pipeline) generate(ctx context.Context, phase string, prompt genai.Prompt) (string, error) {
	start := time.Now()
	text, err := p.generator.Generate(ctx, prompt)
	observability.ObserveGeneration(phase, time.Since(start))
	return text, err
}

// describe produces the natural-language summary. A backend failure here
// degrades to a placeholder string instead of failing the run.
func (p *Pipeline) describe(ctx context.Context, question, sqlText string, result dbexec.Result) string {
	sample := result.Sample(p.cfg.SummarySampleRows)
	if sample == "" {
		sample = "No results returned."
	}

	description, err := p.generate(ctx, "summary", genai.BuildSummaryPrompt(sqlText, sample, question))
	if err != nil {
		p.logger.WarnContext(ctx, "description generation failed", slog.Any("error", err))
		observability.IncrementSummaryDegraded()
		return fmt.Sprintf("Unable to generate description: %v", err)
	}
	return strings.TrimSpace(description)
}

func (p *Pipeline) fail(stageErr *Error) error {
	observability.ObservePipelineFailure(string(stageErr.Stage))
	return stageErr
}
