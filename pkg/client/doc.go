// Package client provides a Go client for the faqrag HTTP API.
//
// The client talks to a running faqrag instance over HTTP and mirrors
// the three service operations: asking a question, rebuilding the
// vector index and reconciling it against the record store.
//
//	c, _ := client.New("http://localhost:8080",
//	    client.WithAPIKey(os.Getenv("FAQRAG_API_KEY")),
//	)
//	answer, _ := c.Ask(ctx, "How do I enroll?")
//	matches, _ := c.AskRaw(ctx, "How do I enroll?", 10)
//	build, _ := c.BuildIndex(ctx)
//	sync, _ := c.Sync(ctx)
//
// Error replies are surfaced as *APIError. Replies carrying a known
// error code unwrap to the matching domain sentinel, so errors.Is
// works across the wire:
//
//	if errors.Is(err, client.ErrUpstreamUnavailable) { ... }
package client
