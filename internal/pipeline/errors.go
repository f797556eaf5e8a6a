package pipeline

import "fmt"

// Stage identifies where in the pipeline a request failed.
type Stage string

const (
	StageMalformedInput Stage = "malformed_input"
	StageGeneration     Stage = "generation"
	StageExtraction     Stage = "extraction"
	StageValidation     Stage = "validation"
	StageExecution      Stage = "execution"
	StageSummarization  Stage = "summarization"
	StageUnexpected     Stage = "unexpected"
)

// Error is a stage-tagged terminal failure. GeneratedText and SQL carry
// whichever intermediate artifacts existed when the stage failed, so callers
// can echo them back for diagnosis.
type Error struct {
	Stage         Stage
	Message       string
	GeneratedText string
	SQL           string
	Err           error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
