package domain

// Record is a published FAQ entry in the relational record store.
// The store owns the row's lifecycle; the core only reads it.
type Record struct {
	ID       int64
	Title    string
	Content  string
	Category string
	Language string
	Schools  string
}

// EmbeddingText is the text a record is vectorized from: title and
// content joined by a single space, untruncated. Oversized records fail
// at the embedding provider individually, never the whole batch.
func (r Record) EmbeddingText() string {
	return r.Title + " " + r.Content
}

// Document is the vector index's copy of a Record plus its embedding.
// Document ids mirror Record ids one-to-one.
type Document struct {
	ID        int64
	Question  string
	Answer    string
	Embedding []float32
	Category  string
	Language  string
	Schools   string
}

// DocumentFromRecord derives an indexable document from a record and
// its computed embedding.
func DocumentFromRecord(r Record, embedding []float32) Document {
	return Document{
		ID:        r.ID,
		Question:  r.Title,
		Answer:    r.Content,
		Embedding: embedding,
		Category:  r.Category,
		Language:  r.Language,
		Schools:   r.Schools,
	}
}
