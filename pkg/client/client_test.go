package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestAsk_SendsRequestAndDecodesAnswer(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody askRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(StructuredAnswer{
			Language:     "fr",
			Answered:     true,
			AnswerMarkup: "<p>Use the portal.</p>",
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithAPIKey("secret-token"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	answer, err := c.Ask(context.Background(), "How do I enroll?", 3)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if gotPath != "/api/v1/ask" {
		t.Errorf("path = %q, want /api/v1/ask", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Message != "How do I enroll?" || gotBody.TopK != 3 {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.UseLLM != nil {
		t.Errorf("use_llm should be omitted, got %v", *gotBody.UseLLM)
	}
	if !answer.Answered || answer.AnswerMarkup != "<p>Use the portal.</p>" {
		t.Errorf("answer = %+v", answer)
	}
}

func TestAsk_DecodesFullWirePayload(t *testing.T) {
	// Wire-shape literal as the server emits it, decoded through the
	// client's own types.
	const reply = `{
		"language": "fr",
		"answered": true,
		"answer_markup": "<p>Use the portal.</p>",
		"used_source_ids": ["10", "20"],
		"citations": [
			{"id": "10", "title": "How to enroll", "answer_markup": "<p>Use the portal.</p>", "score": 1.92},
			{"id": "20", "title": "Fees", "answer_markup": "content unavailable"}
		],
		"meta": {"query_echo": "How do I enroll?", "notes": "wrapped"},
		"redirect": {"needed": false}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	answer, err := c.Ask(context.Background(), "How do I enroll?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if len(answer.UsedSourceIDs) != 2 || answer.UsedSourceIDs[0] != "10" {
		t.Errorf("used_source_ids = %v", answer.UsedSourceIDs)
	}
	if len(answer.Citations) != 2 {
		t.Fatalf("citations = %+v", answer.Citations)
	}
	first := answer.Citations[0]
	if first.ID != "10" || first.Title != "How to enroll" || first.Score != 1.92 {
		t.Errorf("citation[0] = %+v", first)
	}
	if first.AnswerMarkup != "<p>Use the portal.</p>" {
		t.Errorf("citation[0].AnswerMarkup = %q", first.AnswerMarkup)
	}
	if answer.Meta.QueryEcho != "How do I enroll?" || answer.Meta.Notes != "wrapped" {
		t.Errorf("meta = %+v", answer.Meta)
	}
	if answer.Redirect.Needed {
		t.Error("redirect.needed should be false")
	}
}

func TestAskRaw_DisablesSynthesis(t *testing.T) {
	var gotBody askRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(RawMatches{
			Matches: []Match{{ID: 10, Question: "Q", Answer: "A", Score: 1.9}},
		})
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	raw, err := c.AskRaw(context.Background(), "fees", 10)
	if err != nil {
		t.Fatalf("AskRaw: %v", err)
	}

	if gotBody.UseLLM == nil || *gotBody.UseLLM {
		t.Error("use_llm=false not sent")
	}
	if gotBody.TopK != 10 {
		t.Errorf("top_k = %d, want 10", gotBody.TopK)
	}
	if len(raw.Matches) != 1 || raw.Matches[0].ID != 10 {
		t.Errorf("matches = %+v", raw.Matches)
	}
	if raw.LLMProcessed {
		t.Error("llm_processed should be false")
	}
}

func TestBuildIndexAndSync_DecodeCounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/build_index":
			_ = json.NewEncoder(w).Encode(BuildResult{Status: "ok", Indexed: 42})
		case "/api/v1/sync":
			_ = json.NewEncoder(w).Encode(SyncResult{
				Status:  "ok",
				Deleted: 2,
				Added:   3,
				Failed:  []FailedItem{{ID: 7, Reason: "record not found"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, _ := New(srv.URL)

	build, err := c.BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if build.Indexed != 42 {
		t.Errorf("Indexed = %d, want 42", build.Indexed)
	}

	sync, err := c.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if sync.Deleted != 2 || sync.Added != 3 {
		t.Errorf("sync = %+v", sync)
	}
	if len(sync.Failed) != 1 || sync.Failed[0].ID != 7 {
		t.Errorf("failed = %+v", sync.Failed)
	}
}

func TestAPIError_UnwrapsToSentinels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		want   error
	}{
		{"upstream failure", http.StatusBadGateway, "upstream_unavailable", ErrUpstreamUnavailable},
		{"validation failure", http.StatusBadRequest, "validation_failed", ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":    tt.code,
					"message": "nope",
				})
			}))
			defer srv.Close()

			c, _ := New(srv.URL)
			_, err := c.Ask(context.Background(), "q")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.want)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error is not *APIError: %v", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Code != tt.code {
				t.Errorf("apiErr = %+v", apiErr)
			}
		})
	}
}

func TestAPIError_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	_, err := c.Ask(context.Background(), "q")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not *APIError: %v", err)
	}
	if apiErr.Code != "unknown" || apiErr.Message != "Internal Server Error" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}
