// Package dialogue implements the calculation state machine. The engine is
// side-effect free: it inspects the current state and the raw text, and
// returns a StepResult describing what the caller should do. The caller
// applies the state mutation and drives submission.
package dialogue

import (
	"context"
	"fmt"
	"math"
	"strings"

	contractx "github.com/eserovd/delivery-calc-bot/delivery/contract"
	statex "github.com/eserovd/delivery-calc-bot/delivery/state"
	"github.com/eserovd/delivery-calc-bot/delivery/validate"
)

// StepResult is the outcome of feeding one text input into the machine.
// Exactly one of three shapes comes back:
//   - rejection: Valid=false, Message is the retry prompt, state untouched;
//     Fatal marks the non-retryable derived-volume failure, after which the
//     caller must clear the session.
//   - transition: Valid=true, NewState and NextStep are set, Message is the
//     next prompt.
//   - completion: Valid=true, Complete=true, NewState holds the finished
//     field set.
type StepResult struct {
	Valid    bool
	Fatal    bool
	Complete bool
	Message  string
	NextStep contractx.Step
	NewState *statex.ConversationState
}

// Engine validates per-step input and computes derived fields.
type Engine struct {
	hints contractx.HintProvider
}

func New(hints contractx.HintProvider) *Engine {
	return &Engine{hints: hints}
}

// HandleStep processes raw text for the step recorded in st. The returned
// error is reserved for hint-source failures; validation problems are
// reported through the StepResult instead.
func (e *Engine) HandleStep(ctx context.Context, text string, st *statex.ConversationState) (StepResult, error) {
	if st == nil {
		return StepResult{}, fmt.Errorf("%w: no state", contractx.ErrUnknownStep)
	}

	switch st.Step {
	case contractx.StepWeight:
		return e.handleWeight(ctx, text, st)
	case contractx.StepVolumePerUnit:
		return e.handleVolumePerUnit(ctx, text, st)
	case contractx.StepCount:
		return e.handleCount(ctx, text, st)
	case contractx.StepPrice:
		return e.handlePrice(ctx, text, st)
	case contractx.StepDescription:
		return e.handleDescription(text, st), nil
	default:
		return StepResult{Valid: false, Message: msgUnknownStep}, nil
	}
}

// Prompt returns the text to request a field with, preferring the external
// hint over the built-in table.
func (e *Engine) Prompt(ctx context.Context, fieldKey string) (string, error) {
	return e.lookup(ctx, fieldKey, defaultPrompts[fieldKey])
}

func (e *Engine) rejection(ctx context.Context, fieldKey string) (StepResult, error) {
	msg, err := e.lookup(ctx, fieldKey, defaultRejections[fieldKey])
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{Valid: false, Message: msg}, nil
}

func (e *Engine) lookup(ctx context.Context, fieldKey, fallback string) (string, error) {
	if e.hints == nil {
		return fallback, nil
	}
	hint, err := e.hints.Hint(ctx, fieldKey)
	if err != nil {
		return "", fmt.Errorf("hint lookup for %s: %w", fieldKey, err)
	}
	if strings.TrimSpace(hint) == "" {
		return fallback, nil
	}
	return hint, nil
}

func (e *Engine) handleWeight(ctx context.Context, text string, st *statex.ConversationState) (StepResult, error) {
	weight, err := validate.Weight(text)
	if err != nil {
		return e.rejection(ctx, contractx.FieldWeight)
	}

	next := st.Clone()
	next.Weight = &weight
	next.Step = contractx.StepVolumePerUnit
	return e.transition(ctx, contractx.FieldVolumePerUnit, next)
}

func (e *Engine) handleVolumePerUnit(ctx context.Context, text string, st *statex.ConversationState) (StepResult, error) {
	vpu, err := validate.VolumePerUnit(text)
	if err != nil {
		return e.rejection(ctx, contractx.FieldVolumePerUnit)
	}

	next := st.Clone()
	next.VolumePerUnit = &vpu
	next.Step = contractx.StepCount
	return e.transition(ctx, contractx.FieldCount, next)
}

func (e *Engine) handleCount(ctx context.Context, text string, st *statex.ConversationState) (StepResult, error) {
	count, err := validate.Count(text)
	if err != nil {
		return e.rejection(ctx, contractx.FieldCount)
	}

	var perUnit float64
	if st.VolumePerUnit != nil {
		perUnit = *st.VolumePerUnit
	}
	volume := perUnit * float64(count)
	if volume <= 0 || math.IsInf(volume, 0) || math.IsNaN(volume) {
		// Not an input problem: the session is beyond repair and the
		// caller must clear it.
		return StepResult{Valid: false, Fatal: true, Message: msgVolumeFailure}, nil
	}

	next := st.Clone()
	next.Count = &count
	next.Volume = &volume
	next.Step = contractx.StepPrice
	return e.transition(ctx, contractx.FieldPrice, next)
}

func (e *Engine) handlePrice(ctx context.Context, text string, st *statex.ConversationState) (StepResult, error) {
	price, err := validate.Price(text)
	if err != nil {
		return e.rejection(ctx, contractx.FieldPrice)
	}

	next := st.Clone()
	next.Price = &price
	next.Step = contractx.StepDescription
	return e.transition(ctx, contractx.FieldDescription, next)
}

func (e *Engine) handleDescription(text string, st *statex.ConversationState) StepResult {
	next := st.Clone()
	next.Description = text
	next.Step = contractx.StepComplete
	return StepResult{
		Valid:    true,
		Complete: true,
		NewState: next,
	}
}

func (e *Engine) transition(ctx context.Context, nextField string, next *statex.ConversationState) (StepResult, error) {
	prompt, err := e.Prompt(ctx, nextField)
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{
		Valid:    true,
		Message:  prompt,
		NextStep: next.Step,
		NewState: next,
	}, nil
}
