package domain

// StructuredAnswer is the final, user-facing answer object. Every code
// path produces a well-formed instance of it, including total upstream
// failure. When Answered is false, AnswerMarkup still carries a
// user-safe fallback message and Redirect.Needed is true.
type StructuredAnswer struct {
	Language      string     `json:"language"`
	Answered      bool       `json:"answered"`
	AnswerMarkup  string     `json:"answer_markup"`
	Reason        string     `json:"reason_if_unanswered,omitempty"`
	UsedSourceIDs []string   `json:"used_source_ids"`
	Citations     []Citation `json:"citations"`
	Meta          Meta       `json:"meta"`
	Redirect      Redirect   `json:"redirect"`
	Error         string     `json:"error,omitempty"`
}

// Citation ties a factual claim in the answer back to an indexed
// source. AnswerMarkup always carries the cited source's full answer
// content; when the cited id matches no retrieved document it holds a
// placeholder instead of being left empty.
type Citation struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	URL          string  `json:"url,omitempty"`
	AnswerMarkup string  `json:"answer_markup"`
	Score        float64 `json:"score,omitempty"`
}

// Redirect points the user at a human fallback contact when the corpus
// cannot answer.
type Redirect struct {
	Needed bool   `json:"needed"`
	Label  string `json:"label,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Meta carries request echo and diagnostic notes.
type Meta struct {
	QueryEcho string `json:"query_echo"`
	Notes     string `json:"notes,omitempty"`
}
