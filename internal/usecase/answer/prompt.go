package answer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/campushelp/faqrag/internal/domain"
)

// excerpt is the slice of a match shown to the synthesizer.
type excerpt struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
}

const systemPromptTemplate = `You are a FAQ assistant. You answer user questions strictly from the excerpts provided in the user message.

Rules:
1. Answer only from the supplied excerpts. Never use outside knowledge.
2. Cite every factual claim against the id of the excerpt it comes from.
3. Use HTML-safe markup for structural elements (paragraphs, lists, links).
4. Respond in the language of the question; if unclear, use %q.
5. Return only a JSON object matching the schema below. No prose before or after it.
6. If the excerpts are insufficient to answer, set "answered" to false, explain why in "reason_if_unanswered", and set "redirect" to {"needed": true, "label": %q, "url": %q}.

All ids must be JSON strings.

Schema:
{
  "language": "string",
  "answered": true,
  "answer_markup": "string, HTML",
  "reason_if_unanswered": "string, only when answered is false",
  "used_source_ids": ["string"],
  "citations": [{"id": "string", "title": "string", "url": "string optional"}],
  "redirect": {"needed": false, "label": "string optional", "url": "string optional"}
}`

// buildSystemPrompt renders the synthesizer's standing instructions.
func buildSystemPrompt(defaultLanguage, redirectLabel, redirectURL string) string {
	return fmt.Sprintf(systemPromptTemplate, defaultLanguage, redirectLabel, redirectURL)
}

// buildUserPrompt renders the query together with its retrieved
// excerpts. Excerpt content is passed whole, never truncated.
func buildUserPrompt(query string, matches []domain.Match) string {
	excerpts := make([]excerpt, 0, len(matches))
	for _, m := range matches {
		excerpts = append(excerpts, excerpt{
			ID:       strconv.FormatInt(m.ID, 10),
			Title:    m.Question,
			Content:  m.Answer,
			Language: m.Language,
		})
	}

	// The excerpt list is valid JSON, so a marshalling failure is not
	// reachable with these field types.
	data, _ := json.Marshal(excerpts)

	var b strings.Builder
	b.WriteString("Question:\n")
	b.WriteString(query)
	b.WriteString("\n\nExcerpts:\n")
	b.Write(data)
	return b.String()
}
