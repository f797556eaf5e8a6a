package genai

import (
	"strings"
	"testing"
)

func TestBuildSQLPromptEmbedsQuestionSchemaAndCap(t *testing.T) {
	prompt := BuildSQLPrompt("  show top 3 cradles ", `CREATE TABLE "cradles" (...)`, 3)
	if !strings.Contains(prompt.User, "show top 3 cradles") {
		t.Fatalf("question missing from prompt: %q", prompt.User)
	}
	if !strings.Contains(prompt.User, `CREATE TABLE "cradles"`) {
		t.Fatal("schema missing from prompt")
	}
	if !strings.Contains(prompt.User, "use 3 as the limit value") {
		t.Fatal("row cap missing from prompt")
	}
	if !strings.Contains(prompt.User, "Do NOT add a LIMIT clause") {
		t.Fatal("limit instruction missing from prompt")
	}
	if prompt.System == "" {
		t.Fatal("system prompt should not be empty")
	}
}

func TestBuildSummaryPromptEmbedsAllInputs(t *testing.T) {
	prompt := BuildSummaryPrompt(`SELECT * FROM "vessels"`, "[('v-1', 'Aurora')]", "list all vessels")
	for _, want := range []string{`SELECT * FROM "vessels"`, "[('v-1', 'Aurora')]", "list all vessels", "4-5 sentences"} {
		if !strings.Contains(prompt.User, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
