package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/dxcite/internal/model"
)

var (
	// ErrUnassisted is returned when a prompt is requested for the control arm
	ErrUnassisted = errors.New("condition receives no AI assistance")

	// ErrUnknownCondition is returned for conditions the builder does not know
	ErrUnknownCondition = errors.New("unknown condition")

	// ErrEmptyCaseDescription is returned when there is no case text to embed
	ErrEmptyCaseDescription = errors.New("case description is empty")
)

// ValidationError reports a hypothesis table that does not fit the condition.
// No prompt is built and no collaborator is contacted when it is returned.
type ValidationError struct {
	Condition model.Condition
	Got       int    // Number of considered hypotheses
	Want      string // Human-readable requirement, e.g. "exactly 1"
	Blank     bool   // A hypothesis had no text
}

func (e *ValidationError) Error() string {
	if e.Blank {
		return fmt.Sprintf("%s: hypotheses must not be blank", e.Condition)
	}
	return fmt.Sprintf("%s: need %s hypotheses, got %d", e.Condition, e.Want, e.Got)
}

// Message returns the status line shown to the participant
func (e *ValidationError) Message() string {
	if e.Blank {
		return "Please fill in or remove empty hypotheses."
	}
	switch e.Condition {
	case model.ConditionHypothesisDriven:
		if e.Got == 0 {
			return "Please select one hypothesis."
		}
		return "Please select only one hypothesis."
	case model.ConditionMultiHypothesis:
		return "Please select at least two hypotheses."
	default:
		return "Please add at least two hypotheses."
	}
}

// Validate checks the considered hypotheses against the condition's requirements
func Validate(c model.Condition, hypotheses model.Hypotheses) error {
	switch c.Format() {
	case model.FormatNone:
		return nil
	case model.FormatUnknown:
		return fmt.Errorf("%w: %s", ErrUnknownCondition, c)
	}

	considered := model.Considered(c, hypotheses)

	for _, h := range considered {
		if strings.TrimSpace(h) == "" {
			return &ValidationError{Condition: c, Got: len(considered), Blank: true}
		}
	}

	switch c {
	case model.ConditionHypothesisDriven:
		if len(considered) != 1 {
			return &ValidationError{Condition: c, Got: len(considered), Want: "exactly 1"}
		}
	case model.ConditionMultiHypothesis, model.ConditionRecommendationsDriven, model.ConditionDifferential:
		if len(considered) < 2 {
			return &ValidationError{Condition: c, Got: len(considered), Want: "at least 2"}
		}
	}
	return nil
}
