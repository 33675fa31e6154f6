package domain

// Match is a single ranked retrieval hit. Score is cosine similarity
// shifted to a non-negative range (cosine + 1.0, in [0, 2]), never a
// raw distance. Matches arrive sorted by descending score; ordering of
// equal scores follows the underlying engine and is not deterministic.
type Match struct {
	ID       int64   `json:"id"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Language string  `json:"language,omitempty"`
	Score    float64 `json:"score"`
}
