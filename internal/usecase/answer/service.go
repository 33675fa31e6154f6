// Package answer orchestrates retrieval and synthesis into the final
// structured answer.
package answer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campushelp/faqrag/internal/domain"
	"github.com/campushelp/faqrag/internal/metrics"
)

const (
	fallbackMarkup = "<p>No reliable information was found to answer your question. Please use the contact below to reach a human.</p>"
	fallbackReason = "no matching FAQ entries were found"

	// citationPlaceholder fills a citation whose id matches no
	// retrieved document. Citations never ship an empty content field.
	citationPlaceholder = "content unavailable"
)

// Config holds answer-shaping settings.
type Config struct {
	DefaultLanguage string
	RedirectLabel   string
	RedirectURL     string
}

// Result is the outcome of one Ask call. When Synthesized is false the
// raw Matches are the payload and Answer is empty.
type Result struct {
	Answer      domain.StructuredAnswer
	Matches     []domain.Match
	Synthesized bool
}

// Service drives the ask pipeline: retrieve, synthesize, shape.
type Service struct {
	retriever   Retriever
	synthesizer Synthesizer
	cfg         Config
	logger      *zap.Logger
}

// New creates an answer orchestrator.
func New(retriever Retriever, synthesizer Synthesizer, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		retriever:   retriever,
		synthesizer: synthesizer,
		cfg:         cfg,
		logger:      logger,
	}
}

// Ask answers a question. Only a failure to retrieve at all (the query
// cannot be embedded or the index is unreachable) returns an error;
// every synthesis problem degrades into a well-formed answer instead.
func (s *Service) Ask(ctx context.Context, query string, topK int, useLLM bool) (Result, error) {
	matches, err := s.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve: %w", err)
	}

	if len(matches) == 0 {
		return Result{
			Answer:      s.fallbackAnswer(query),
			Synthesized: true,
		}, nil
	}

	if !useLLM {
		return Result{Matches: matches, Synthesized: false}, nil
	}

	system := buildSystemPrompt(s.cfg.DefaultLanguage, s.cfg.RedirectLabel, s.cfg.RedirectURL)
	user := buildUserPrompt(query, matches)

	var result domain.SynthesisResult
	raw, err := s.synthesizer.Complete(ctx, system, user)
	if err != nil {
		result = domain.FailedSynthesis(err)
	} else {
		result = parseSynthesis(raw)
	}

	metrics.SynthesisOutcomesTotal.WithLabelValues(string(result.Outcome)).Inc()

	var answer domain.StructuredAnswer
	switch result.Outcome {
	case domain.SynthesisParsed:
		answer = result.Answer
	case domain.SynthesisRawText:
		answer = s.wrapRawText(result.Raw, matches)
	case domain.SynthesisFailed:
		s.logger.Warn("answer synthesis failed, degrading to top match",
			zap.Error(result.Err))
		answer = s.topMatchAnswer(matches[0], result.Err)
	}

	s.enrichCitations(&answer, matches)
	s.enforceInvariants(&answer)
	answer.Meta.QueryEcho = query

	return Result{Answer: answer, Synthesized: true}, nil
}

// fallbackAnswer is the terminal no-matches response.
func (s *Service) fallbackAnswer(query string) domain.StructuredAnswer {
	return domain.StructuredAnswer{
		Language:      s.cfg.DefaultLanguage,
		Answered:      false,
		AnswerMarkup:  fallbackMarkup,
		Reason:        fallbackReason,
		UsedSourceIDs: []string{},
		Citations:     []domain.Citation{},
		Meta:          domain.Meta{QueryEcho: query},
		Redirect: domain.Redirect{
			Needed: true,
			Label:  s.cfg.RedirectLabel,
			URL:    s.cfg.RedirectURL,
		},
	}
}

// wrapRawText turns an unparseable but non-empty synthesizer reply
// into an answer that still surfaces every retrieved source.
func (s *Service) wrapRawText(raw string, matches []domain.Match) domain.StructuredAnswer {
	used := make([]string, 0, len(matches))
	citations := make([]domain.Citation, 0, len(matches))
	for _, m := range matches {
		id := normalizeID(m.ID)
		used = append(used, id)
		citations = append(citations, domain.Citation{
			ID:    id,
			Title: m.Question,
		})
	}

	return domain.StructuredAnswer{
		Language:      s.cfg.DefaultLanguage,
		Answered:      true,
		AnswerMarkup:  "<p>" + raw + "</p>",
		UsedSourceIDs: used,
		Citations:     citations,
		Meta:          domain.Meta{Notes: "synthesizer reply did not match the answer schema"},
	}
}

// topMatchAnswer is the synthesis-failure degradation: the single best
// match's stored answer stands in for a synthesized one. The error
// detail lands in the Error field, never in the user-facing markup.
func (s *Service) topMatchAnswer(top domain.Match, cause error) domain.StructuredAnswer {
	id := normalizeID(top.ID)
	return domain.StructuredAnswer{
		Language:      s.cfg.DefaultLanguage,
		Answered:      true,
		AnswerMarkup:  top.Answer,
		UsedSourceIDs: []string{id},
		Citations: []domain.Citation{
			{ID: id, Title: top.Question},
		},
		Error: cause.Error(),
	}
}

// enrichCitations fills every citation with its source's full answer
// content and score, looked up by normalized id from the retrieved
// matches. Unknown ids get a placeholder, never an empty field.
func (s *Service) enrichCitations(answer *domain.StructuredAnswer, matches []domain.Match) {
	byID := make(map[string]domain.Match, len(matches))
	for _, m := range matches {
		byID[normalizeID(m.ID)] = m
	}

	for i := range answer.Citations {
		c := &answer.Citations[i]
		m, ok := byID[c.ID]
		if !ok {
			if c.AnswerMarkup == "" {
				c.AnswerMarkup = citationPlaceholder
			}
			continue
		}
		c.AnswerMarkup = m.Answer
		c.Score = m.Score
		if c.Title == "" {
			c.Title = m.Question
		}
	}
}

// enforceInvariants normalizes the answer so every emitted object is
// well formed regardless of what the synthesizer produced.
func (s *Service) enforceInvariants(answer *domain.StructuredAnswer) {
	if answer.Language == "" {
		answer.Language = s.cfg.DefaultLanguage
	}
	if answer.UsedSourceIDs == nil {
		answer.UsedSourceIDs = []string{}
	}
	if answer.Citations == nil {
		answer.Citations = []domain.Citation{}
	}
	if !answer.Answered {
		answer.Redirect.Needed = true
		if answer.Redirect.Label == "" {
			answer.Redirect.Label = s.cfg.RedirectLabel
		}
		if answer.Redirect.URL == "" {
			answer.Redirect.URL = s.cfg.RedirectURL
		}
		if answer.AnswerMarkup == "" {
			answer.AnswerMarkup = fallbackMarkup
		}
	}
}
