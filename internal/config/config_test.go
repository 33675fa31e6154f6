package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP:    HTTPConfig{Port: 8080},
		Records: RecordsConfig{DSN: "user:pass@tcp(localhost:3306)/faq"},
		Index: IndexConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRecordsDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Records.DSN = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing records dsn")
	}
}

func TestValidate_MissingIndexAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Index.Addrs = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing index addrs")
	}
}

func TestValidate_InvalidTemperature(t *testing.T) {
	cfg := validConfig()
	cfg.Synthesis.Temperature = 2.5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for out-of-range temperature")
	}

	expected := `synthesis.temperature must be in [0, 2], got 2.5`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Index.Name != "faq:idx" {
		t.Errorf("expected Name='faq:idx', got %q", cfg.Index.Name)
	}
	if cfg.Index.KeyPrefix != "faq:" {
		t.Errorf("expected KeyPrefix='faq:', got %q", cfg.Index.KeyPrefix)
	}
	if cfg.Index.ListPageSize != 1000 {
		t.Errorf("expected ListPageSize=1000, got %d", cfg.Index.ListPageSize)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected Model='text-embedding-3-small', got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("expected Dimensions=1536, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Synthesis.Model != "gpt-4o-mini" {
		t.Errorf("expected Model='gpt-4o-mini', got %q", cfg.Synthesis.Model)
	}
	if cfg.Synthesis.MaxTokens != 1024 {
		t.Errorf("expected MaxTokens=1024, got %d", cfg.Synthesis.MaxTokens)
	}
	if cfg.Answer.DefaultLanguage != "fr" {
		t.Errorf("expected DefaultLanguage='fr', got %q", cfg.Answer.DefaultLanguage)
	}
	if cfg.Answer.DefaultTopK != 5 {
		t.Errorf("expected DefaultTopK=5, got %d", cfg.Answer.DefaultTopK)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Index:     IndexConfig{Name: "custom:idx", KeyPrefix: "custom:", ListPageSize: 50},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-large", Dimensions: 3072},
		Answer:    AnswerConfig{DefaultLanguage: "en", DefaultTopK: 3},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Index.Name != "custom:idx" {
		t.Errorf("expected Name='custom:idx', got %q", cfg.Index.Name)
	}
	if cfg.Embedding.Model != "text-embedding-3-large" {
		t.Errorf("expected Model='text-embedding-3-large', got %q", cfg.Embedding.Model)
	}
	if cfg.Answer.DefaultTopK != 3 {
		t.Errorf("expected DefaultTopK=3, got %d", cfg.Answer.DefaultTopK)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FAQRAG_TEST_KEY", "secret")

	in := []byte("api_key: ${FAQRAG_TEST_KEY}\nmodel: ${FAQRAG_TEST_MODEL:-gpt-4o-mini}\n")
	out := string(expandEnvVars(in))

	want := "api_key: secret\nmodel: gpt-4o-mini\n"
	if out != want {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, want)
	}
}
