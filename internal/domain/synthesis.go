package domain

// SynthesisOutcome classifies what came back from the answer
// synthesizer.
type SynthesisOutcome string

const (
	// SynthesisParsed means the reply decoded as a StructuredAnswer.
	SynthesisParsed SynthesisOutcome = "parsed"
	// SynthesisRawText means the reply was text but not the expected
	// schema; the orchestrator wraps it instead of discarding it.
	SynthesisRawText SynthesisOutcome = "raw_text"
	// SynthesisFailed means the call itself failed (timeout, transport,
	// empty reply).
	SynthesisFailed SynthesisOutcome = "failed"
)

// SynthesisResult is the typed outcome of one synthesizer call.
// Exactly one of Answer, Raw, or Err is meaningful, selected by
// Outcome.
type SynthesisResult struct {
	Outcome SynthesisOutcome
	Answer  StructuredAnswer
	Raw     string
	Err     error
}

// ParsedSynthesis wraps a successfully decoded answer.
func ParsedSynthesis(a StructuredAnswer) SynthesisResult {
	return SynthesisResult{Outcome: SynthesisParsed, Answer: a}
}

// RawTextSynthesis wraps an undecodable but non-empty reply.
func RawTextSynthesis(raw string) SynthesisResult {
	return SynthesisResult{Outcome: SynthesisRawText, Raw: raw}
}

// FailedSynthesis wraps a call failure.
func FailedSynthesis(err error) SynthesisResult {
	return SynthesisResult{Outcome: SynthesisFailed, Err: err}
}
