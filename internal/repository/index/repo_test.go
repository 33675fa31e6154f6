package index

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/campushelp/faqrag/internal/db"
	"github.com/campushelp/faqrag/internal/db/redis"
	"github.com/campushelp/faqrag/internal/domain"
)

// --- EnsureSchema ---

func TestEnsureSchema_CreatesWhenAbsent(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	var created *db.IndexDefinition
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		if name != "faq:idx" {
			t.Errorf("unexpected index name: %s", name)
		}
		return false, nil
	}
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected CreateIndex to be called")
	}
	if created.Name != "faq:idx" {
		t.Errorf("unexpected index name: %s", created.Name)
	}
	if len(created.Prefixes) != 1 || created.Prefixes[0] != "faq:" {
		t.Errorf("unexpected prefixes: %v", created.Prefixes)
	}

	var vector *db.IndexField
	for i := range created.Fields {
		if created.Fields[i].Type == db.IndexFieldVector {
			vector = &created.Fields[i]
		}
	}
	if vector == nil {
		t.Fatal("expected a vector field in the schema")
	}
	if vector.VectorDim != 4 {
		t.Errorf("expected VectorDim=4, got %d", vector.VectorDim)
	}
	if vector.VectorDistance != db.DistanceCosine {
		t.Errorf("expected cosine distance, got %s", vector.VectorDistance)
	}
}

func TestEnsureSchema_SkipsWhenPresent(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Fatal("CreateIndex must not be called when the index exists")
		return nil
	}

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureSchema_ToleratesCreateRace(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return db.ErrIndexExists
	}

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("expected race on create to be tolerated, got %v", err)
	}
}

// --- Upsert / Delete ---

func TestUpsert_WritesHashWithEmbeddingBlob(t *testing.T) {
	repo, ms := newTestRepo(t)

	embedding := []float32{0.1, 0.2, 0.3, 0.4}
	var gotKey string
	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotKey = key
		gotFields = fields
		return nil
	}

	doc := domain.Document{
		ID:        7,
		Question:  "How do I enroll?",
		Answer:    "Enrollment opens in September.",
		Embedding: embedding,
		Category:  "admissions",
		Language:  "fr",
		Schools:   "paris",
	}
	if err := repo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "faq:7" {
		t.Errorf("expected key 'faq:7', got %q", gotKey)
	}
	if gotFields["question"] != "How do I enroll?" {
		t.Errorf("unexpected question field: %q", gotFields["question"])
	}
	if gotFields["embedding"] != redis.VectorToBytes(embedding) {
		t.Error("expected embedding stored as a float32 blob")
	}
}

func TestDelete_UsesDocKey(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotKey string
	ms.delFn = func(_ context.Context, key string) error {
		gotKey = key
		return nil
	}

	if err := repo.Delete(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "faq:42" {
		t.Errorf("expected key 'faq:42', got %q", gotKey)
	}
}

// --- ListIDs ---

func TestListIDs_PagesThroughIndex(t *testing.T) {
	repo, ms := newTestRepo(t)

	pages := map[int]*db.SearchResult{
		0: {Total: 3, Entries: []db.SearchEntry{{Key: "faq:1"}, {Key: "faq:2"}}},
		2: {Total: 3, Entries: []db.SearchEntry{{Key: "faq:3"}}},
	}
	var offsets []int
	ms.searchListFn = func(
		_ context.Context, index, query string, offset, limit int, _ []string,
	) (*db.SearchResult, error) {
		if index != "faq:idx" || query != "*" {
			t.Errorf("unexpected list query: %s %s", index, query)
		}
		if limit != 2 {
			t.Errorf("expected page size 2, got %d", limit)
		}
		offsets = append(offsets, offset)
		return pages[offset], nil
	}

	ids, err := repo.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int64{1, 2, 3}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 2 {
		t.Errorf("unexpected paging offsets: %v", offsets)
	}
}

func TestListIDs_EmptyIndex(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchListFn = func(
		_ context.Context, _, _ string, _, _ int, _ []string,
	) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 0}, nil
	}

	ids, err := repo.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}

func TestListIDs_BadKey(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchListFn = func(
		_ context.Context, _, _ string, _, _ int, _ []string,
	) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{{Key: "faq:not-a-number"}}}, nil
	}

	_, err := repo.ListIDs(context.Background())
	if err == nil {
		t.Fatal("expected error for malformed index key")
	}
}

// --- QueryByVector ---

func TestQueryByVector_MapsHitsAndScores(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.K != 2 {
			t.Errorf("expected K=2, got %d", q.K)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:    "faq:1",
					Score:  0.1, // cosine distance
					Fields: map[string]string{"question": "Q1", "answer": "A1", "language": "fr"},
				},
				{
					Key:    "faq:2",
					Score:  0.5,
					Fields: map[string]string{"question": "Q2", "answer": "A2", "language": "en"},
				},
			},
		}, nil
	}

	matches, err := repo.QueryByVector(context.Background(), []float32{0, 0, 0, 1}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	if matches[0].ID != 1 || matches[0].Question != "Q1" || matches[0].Language != "fr" {
		t.Errorf("unexpected first match: %+v", matches[0])
	}
	if math.Abs(matches[0].Score-1.9) > 1e-9 {
		t.Errorf("expected score 1.9 for distance 0.1, got %g", matches[0].Score)
	}
	if math.Abs(matches[1].Score-1.5) > 1e-9 {
		t.Errorf("expected score 1.5 for distance 0.5, got %g", matches[1].Score)
	}
}

func TestQueryByVector_PropagatesError(t *testing.T) {
	repo, ms := newTestRepo(t)

	wantErr := errors.New("search down")
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, wantErr
	}

	_, err := repo.QueryByVector(context.Background(), []float32{0, 0, 0, 1}, 3)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped search error, got %v", err)
	}
}

func TestScoreFromDistance_Clamped(t *testing.T) {
	tests := []struct {
		distance float64
		want     float64
	}{
		{0, 2},
		{1, 1},
		{2, 0},
		{2.5, 0},
		{-0.5, 2},
	}

	for _, tc := range tests {
		if got := scoreFromDistance(tc.distance); got != tc.want {
			t.Errorf("scoreFromDistance(%g) = %g, want %g", tc.distance, got, tc.want)
		}
	}
}
