package answer

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/campushelp/faqrag/internal/domain"
)

// flexID decodes a JSON value that may arrive as either a number or a
// string. The synthesizer is asked for string ids, but echoes are not
// guaranteed, so the boundary normalizes both forms to a string.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// synthPayload mirrors the JSON object the synthesizer is instructed
// to produce.
type synthPayload struct {
	Language      string          `json:"language"`
	Answered      *bool           `json:"answered"`
	AnswerMarkup  string          `json:"answer_markup"`
	Reason        string          `json:"reason_if_unanswered"`
	UsedSourceIDs []flexID        `json:"used_source_ids"`
	Citations     []synthCitation `json:"citations"`
	Meta          struct {
		Notes string `json:"notes"`
	} `json:"meta"`
	Redirect struct {
		Needed bool   `json:"needed"`
		Label  string `json:"label"`
		URL    string `json:"url"`
	} `json:"redirect"`
}

type synthCitation struct {
	ID    flexID `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// parseSynthesis classifies the raw completion text. A reply that
// decodes into the expected schema becomes Parsed; any other non-empty
// text becomes RawText; an empty reply is a Failed outcome.
func parseSynthesis(raw string) domain.SynthesisResult {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return domain.FailedSynthesis(domain.ErrMalformedResponse)
	}

	var payload synthPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return domain.RawTextSynthesis(text)
	}

	// A decodable JSON value that carries none of the expected fields
	// is still a malformed reply, not a parsed answer.
	if payload.Answered == nil && payload.AnswerMarkup == "" {
		return domain.RawTextSynthesis(text)
	}

	return domain.ParsedSynthesis(toStructuredAnswer(payload))
}

func toStructuredAnswer(p synthPayload) domain.StructuredAnswer {
	answered := p.Answered != nil && *p.Answered

	used := make([]string, 0, len(p.UsedSourceIDs))
	for _, id := range p.UsedSourceIDs {
		used = append(used, string(id))
	}

	citations := make([]domain.Citation, 0, len(p.Citations))
	for _, c := range p.Citations {
		citations = append(citations, domain.Citation{
			ID:    string(c.ID),
			Title: c.Title,
			URL:   c.URL,
		})
	}

	return domain.StructuredAnswer{
		Language:      p.Language,
		Answered:      answered,
		AnswerMarkup:  p.AnswerMarkup,
		Reason:        p.Reason,
		UsedSourceIDs: used,
		Citations:     citations,
		Meta:          domain.Meta{Notes: p.Meta.Notes},
		Redirect: domain.Redirect{
			Needed: p.Redirect.Needed,
			Label:  p.Redirect.Label,
			URL:    p.Redirect.URL,
		},
	}
}

// stripCodeFence removes a markdown code fence wrapper if the model
// added one despite the JSON-only instruction.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	trimmed := strings.TrimPrefix(text, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// normalizeID coerces a numeric or string id into its canonical string
// form used for citation lookups.
func normalizeID(id int64) string {
	return strconv.FormatInt(id, 10)
}
