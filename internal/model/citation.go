package model

// Parsed is the result of parsing one collaborator response
type Parsed struct {
	Citations []string `json:"citations"`          // Deduplicated, ordered by first appearance
	Message   string   `json:"message"`            // Annotated narrative with citation markers
	Warnings  []string `json:"warnings,omitempty"` // Non-fatal issues (unknown hypothesis keys, dangling references)
}

// Clone returns a deep copy so cached results cannot be mutated by callers
func (p *Parsed) Clone() *Parsed {
	if p == nil {
		return nil
	}
	out := &Parsed{Message: p.Message}
	if p.Citations != nil {
		out.Citations = make([]string, len(p.Citations))
		copy(out.Citations, p.Citations)
	}
	if p.Warnings != nil {
		out.Warnings = make([]string, len(p.Warnings))
		copy(out.Warnings, p.Warnings)
	}
	return out
}

// AIHelp is the record entry written after each successful assisted interaction
type AIHelp struct {
	Condition          Condition `json:"condition"`
	Provider           string    `json:"provider,omitempty"`
	Model              string    `json:"model,omitempty"`
	Hypotheses         []string  `json:"hypotheses"`
	SelectedHypotheses []string  `json:"selected_hypotheses"`
	RawMessage         string    `json:"raw_message"`
	ParsedMessage      string    `json:"parsed_message"`
	Citations          []string  `json:"citations"`
	AnnotatedCase      string    `json:"annotated_case,omitempty"`
	Warnings           []string  `json:"warnings,omitempty"`
}
