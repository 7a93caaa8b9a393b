// Package session drives one participant through the assisted cases and
// accumulates everything they did in an append-only result record.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/dxcite/internal/casefile"
	"github.com/ppiankov/dxcite/internal/citation"
	"github.com/ppiankov/dxcite/internal/llm"
	"github.com/ppiankov/dxcite/internal/model"
	"github.com/ppiankov/dxcite/internal/prompt"
)

// Status lines shown to the participant
const (
	StatusRetry       = "The AI assistant did not respond. Please try again."
	StatusNoCase      = "This case could not be loaded."
	StatusUnavailable = "AI assistance is currently unavailable."
	StatusUnreadable  = "The AI response could not be read. Please try again."
)

var (
	// ErrCollaborator wraps failed or incomplete collaborator calls
	ErrCollaborator = errors.New("collaborator failed")

	// ErrNoProvider is returned when an assisted condition has no collaborator
	ErrNoProvider = errors.New("no collaborator configured")
)

// Outcome is what the participant sees after asking for help.
// When Status is set nothing else is.
type Outcome struct {
	Status       string   // Blocking or retryable status line
	Message      string   // Annotated collaborator message
	Citations    string   // Numbered citation list
	CaseText     string   // Case description with highlighted citations
	CitationList []string // Ordered, deduplicated citations
	Warnings     []string // Non-fatal parse findings
	ResponseID   string   // Collaborator response id (names the record entry)
	Cached       bool     // Served without contacting the collaborator
}

// Session is the request-scoped state of one participant
type Session struct {
	condition model.Condition
	provider  llm.Provider
	cases     *casefile.Store
	parser    *citation.Parser
	record    *model.Record
	model     string // Requested collaborator model; empty uses the provider default
	maxTokens int
	now       func() time.Time
}

// New creates a session. provider may be nil for the control condition.
func New(condition model.Condition, provider llm.Provider, cases *casefile.Store, parser *citation.Parser) *Session {
	s := &Session{
		condition: condition,
		provider:  provider,
		cases:     cases,
		parser:    parser,
		record:    model.NewRecord(),
		now:       time.Now,
	}
	s.record.SetIfAbsent(model.FieldGroup, string(condition))
	return s
}

// SetModel records the collaborator model used for this session and
// requests it on every collaborator call
func (s *Session) SetModel(name string) {
	if name != "" {
		s.model = name
		s.record.SetIfAbsent(model.FieldModel, name)
	}
}

// Condition returns the participant's experimental condition
func (s *Session) Condition() model.Condition {
	return s.condition
}

// Record returns the session's result record
func (s *Session) Record() *model.Record {
	return s.record
}

// StartCase stamps the start time of case n (once) and opens its hypothesis list
func (s *Session) StartCase(n int) error {
	s.record.SetIfAbsent(model.StartTimeKey(n), model.Timestamp(s.now()))
	return s.record.Append(model.HypothesesKey(n))
}

// EndCase stamps the end time of case n and stores the final hypotheses
func (s *Session) EndCase(n int, hypotheses model.Hypotheses) error {
	if err := s.record.Append(model.HypothesesKey(n), hypotheses.Texts()...); err != nil {
		return err
	}
	return s.record.Set(model.EndTimeKey(n), model.Timestamp(s.now()))
}

// Assist asks the collaborator about case n and renders the cited answer.
// Every entered hypothesis is saved first, even when validation then fails.
// Validation failures send nothing to the collaborator; collaborator and
// parse failures leave the record untouched apart from the hypotheses.
func (s *Session) Assist(ctx context.Context, n int, hypotheses model.Hypotheses) (*Outcome, error) {
	switch s.condition.Format() {
	case model.FormatNone:
		return &Outcome{Message: citation.ControlMessage, CitationList: []string{}}, nil
	case model.FormatUnknown:
		return &Outcome{Message: citation.FallbackMessage, CitationList: []string{}}, nil
	}

	if err := s.StartCase(n); err != nil {
		return &Outcome{Status: StatusRetry}, err
	}
	if err := s.record.Append(model.HypothesesKey(n), hypotheses.Texts()...); err != nil {
		return &Outcome{Status: StatusRetry}, err
	}

	if err := prompt.Validate(s.condition, hypotheses); err != nil {
		var vErr *prompt.ValidationError
		if errors.As(err, &vErr) {
			return &Outcome{Status: vErr.Message()}, err
		}
		return &Outcome{Status: citation.FallbackMessage}, err
	}

	caseText, err := s.cases.Get(n)
	if err != nil {
		return &Outcome{Status: StatusNoCase}, err
	}

	if s.provider == nil {
		return &Outcome{Status: StatusUnavailable}, ErrNoProvider
	}

	userPrompt, err := prompt.BuildPrompt(s.condition, caseText, hypotheses)
	if err != nil {
		return &Outcome{Status: StatusNoCase}, err
	}
	schema, err := prompt.BuildSchema(s.condition, hypotheses)
	if err != nil {
		return &Outcome{Status: citation.FallbackMessage}, err
	}

	resp, err := s.provider.Complete(ctx, llm.Request{
		Condition: s.condition,
		Model:     s.model,
		System:    prompt.Instructions(s.condition),
		Prompt:    userPrompt,
		Schema:    schema,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return &Outcome{Status: StatusRetry}, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}
	if !resp.Completed {
		return &Outcome{Status: StatusRetry}, fmt.Errorf("%w: response incomplete (%s)", ErrCollaborator, resp.FinishReason)
	}

	texts := hypotheses.Texts()
	selected := hypotheses.Selected()
	parsed, err := s.parser.Parse(resp.Content, texts, selected, s.condition)
	if err != nil {
		return &Outcome{Status: StatusUnreadable}, err
	}

	annotated := citation.AnnotateCase(caseText, parsed.Citations, s.parser.Style())

	entry := model.AIHelp{
		Condition:          s.condition,
		Provider:           s.provider.Name(),
		Model:              resp.Model,
		Hypotheses:         texts,
		SelectedHypotheses: selected,
		RawMessage:         resp.Content,
		ParsedMessage:      parsed.Message,
		Citations:          parsed.Citations,
		AnnotatedCase:      annotated,
		Warnings:           parsed.Warnings,
	}
	// A cached answer for a repeated request carries the same id; the
	// interaction is already on the record.
	if err := s.record.Set(model.AIHelpKey(n, resp.ID), entry); err != nil && !errors.Is(err, model.ErrFieldExists) {
		return &Outcome{Status: StatusRetry}, err
	}

	return &Outcome{
		Message:      parsed.Message,
		Citations:    citation.FormatCitations(parsed.Citations),
		CaseText:     annotated,
		CitationList: parsed.Citations,
		Warnings:     parsed.Warnings,
		ResponseID:   resp.ID,
		Cached:       resp.Cached,
	}, nil
}

// WithMaxTokens limits the collaborator response length
func (s *Session) WithMaxTokens(n int) *Session {
	s.maxTokens = n
	return s
}
