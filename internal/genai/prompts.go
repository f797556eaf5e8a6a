package genai

import (
	"fmt"
	"strings"
)

// BuildSQLPrompt assembles the synthesis request: the user's question, the
// schema description, and the numeric row cap. The instructions pin down the
// two behaviors the pipeline later enforces anyway: exact double-quoted
// identifiers and no LIMIT clause unless the user asked for one.
func BuildSQLPrompt(question, schemaText string, rowCap int) Prompt {
	system := "You are an expert SQL query writer for a PostgreSQL database. " +
		"Given a user question and the database schema, generate a precise SQL query that answers the question. " +
		"Return only the SQL query, without explanations or markdown."

	user := fmt.Sprintf(`User Input: %s

Database Schema:
%s

Instructions:
- Write a SQL query that directly answers the user's question.
- Use double quotes for identifiers (e.g., "cradlename") to respect PostgreSQL's case sensitivity.
- Use exact column names from the schema (e.g., "cradlename", not "cradleName").
- Do NOT add a LIMIT clause unless the user explicitly requests it (e.g., "limit to 5 results", "show top %d", "first 3 cradles"). If a limit is requested, use %d as the limit value.
- If the question is ambiguous, target the most relevant table based on keywords (e.g., "cradles" for cradle-related questions).
- Return only the SQL query, without explanations or markdown.`,
		strings.TrimSpace(question), schemaText, rowCap, rowCap)

	return Prompt{System: system, User: user}
}

// BuildSummaryPrompt assembles the result-description request from the executed
// statement, a bounded row sample, and the original question.
func BuildSummaryPrompt(sqlQuery, resultSample, question string) Prompt {
	system := "You are a database analyst who explains query results to non-technical users."

	user := fmt.Sprintf(`I ran the following SQL query:

SQL Query:
%s

And got these results:
%s

The original question was: %s

Analyse the results and provide a concise description (4-5 sentences) of what they show, tailored to the original question.
- Focus on the main data returned (e.g., entities or attributes shown).
- Mention if no results were found or if the results don't fully match the question.
- Use simple language for non-technical users.`,
		sqlQuery, resultSample, question)

	return Prompt{System: system, User: user}
}
