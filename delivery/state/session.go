package state

import (
	"time"

	contractx "github.com/eserovd/delivery-calc-bot/delivery/contract"
)

// ConversationState tracks one user's position in the calculation dialogue
// and the field values collected so far. A field is nil until its step has
// been passed; Volume is derived from VolumePerUnit and Count, never entered
// directly.
type ConversationState struct {
	Type          contractx.DeliveryType `json:"type"`
	Step          contractx.Step         `json:"step"`
	Weight        *float64               `json:"weight,omitempty"`
	VolumePerUnit *float64               `json:"volume_per_unit,omitempty"`
	Count         *int                   `json:"count,omitempty"`
	Volume        *float64               `json:"volume,omitempty"`
	Price         *float64               `json:"price,omitempty"`
	Description   string                 `json:"description,omitempty"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// NewConversationState starts a fresh session at the type-selection step.
// The delivery type defaults to cargo until the user picks one.
func NewConversationState(now time.Time) *ConversationState {
	return &ConversationState{
		Type:      contractx.DeliveryCargo,
		Step:      contractx.StepType,
		UpdatedAt: now.UTC(),
	}
}

// Clone returns an independent copy. Steps advance by writing a mutated
// clone back to the store, so a rejected input never leaves a half-updated
// state behind.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	out := *s
	out.Weight = clonePtr(s.Weight)
	out.VolumePerUnit = clonePtr(s.VolumePerUnit)
	out.Count = clonePtr(s.Count)
	out.Volume = clonePtr(s.Volume)
	out.Price = clonePtr(s.Price)
	return &out
}

// Submission assembles the completed field set for the row store. Only
// meaningful once Step is complete.
func (s *ConversationState) Submission(userID string) contractx.Submission {
	sub := contractx.Submission{
		UserID:      userID,
		Type:        s.Type,
		Description: s.Description,
	}
	if s.Weight != nil {
		sub.Weight = *s.Weight
	}
	if s.VolumePerUnit != nil {
		sub.VolumePerUnit = *s.VolumePerUnit
	}
	if s.Count != nil {
		sub.Count = *s.Count
	}
	if s.Volume != nil {
		sub.Volume = *s.Volume
	}
	if s.Price != nil {
		sub.Price = *s.Price
	}
	return sub
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Float and Int build optional field values in place.
func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
