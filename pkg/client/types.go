package client

// StructuredAnswer is the synthesized reply to a question. Every reply
// is well formed, including total upstream failure: when Answered is
// false, AnswerMarkup carries a user-safe fallback message and
// Redirect.Needed is true.
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

// Citation ties a claim in the answer back to an indexed source.
// AnswerMarkup always carries the cited source's answer content.
type Citation struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	URL          string  `json:"url,omitempty"`
	AnswerMarkup string  `json:"answer_markup"`
	Score        float64 `json:"score,omitempty"`
}

// Redirect points at a human fallback contact when the corpus cannot
// answer.
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

// Match is a single ranked retrieval hit, strongest first. Score is
// cosine similarity shifted to [0, 2], never a raw distance.
type Match struct {
	ID       int64   `json:"id"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Language string  `json:"language,omitempty"`
	Score    float64 `json:"score"`
}

// FailedItem reports one record an index run could not process.
type FailedItem struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BuildResult reports a full index rebuild.
type BuildResult struct {
	Status  string       `json:"status"`
	Indexed int          `json:"indexed"`
	Failed  []FailedItem `json:"failed,omitempty"`
}

// SyncResult reports an index reconciliation.
type SyncResult struct {
	Status  string       `json:"status"`
	Deleted int          `json:"deleted"`
	Added   int          `json:"added"`
	Failed  []FailedItem `json:"failed,omitempty"`
}

// RawMatches is the ask reply when synthesis is disabled.
type RawMatches struct {
	Matches      []Match `json:"matches"`
	LLMProcessed bool    `json:"llm_processed"`
}
