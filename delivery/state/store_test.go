package state

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/eserovd/delivery-calc-bot/delivery/contract"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "42"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrStateNotFound", err)
	}

	st := NewConversationState(time.Now())
	if err := store.Set(ctx, "42", st); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Step != contractx.StepType || got.Type != contractx.DeliveryCargo {
		t.Fatalf("Get() = step=%s type=%s, want fresh state", got.Step, got.Type)
	}

	if err := store.Clear(ctx, "42"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := store.Get(ctx, "42"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Get() after Clear() error = %v, want ErrStateNotFound", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	st := NewConversationState(time.Now())
	st.Weight = Float(12.5)
	if err := store.Set(ctx, "u", st); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Mutating what Get returned must not leak into the store.
	first, _ := store.Get(ctx, "u")
	*first.Weight = 99
	first.Step = contractx.StepPrice

	second, _ := store.Get(ctx, "u")
	if *second.Weight != 12.5 || second.Step != contractx.StepType {
		t.Fatalf("stored state mutated through a returned copy: %+v", second)
	}
}

func TestMemoryStoreEmptyUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, ""); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("Get(\"\") error = %v, want ErrInvalidUser", err)
	}
	if err := store.Set(ctx, "", NewConversationState(time.Now())); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("Set(\"\") error = %v, want ErrInvalidUser", err)
	}
	if err := store.Set(ctx, "u", nil); !errors.Is(err, ErrNilState) {
		t.Fatalf("Set(nil) error = %v, want ErrNilState", err)
	}
}

func TestMemoryStoreBotMessages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	for _, id := range []int{10, 11, 12} {
		if err := store.PushBotMessage(ctx, "u", id); err != nil {
			t.Fatalf("PushBotMessage(%d) error = %v", id, err)
		}
	}

	ids, err := store.FlushBotMessages(ctx, "u")
	if err != nil {
		t.Fatalf("FlushBotMessages() error = %v", err)
	}
	if len(ids) != 3 || ids[0] != 10 || ids[2] != 12 {
		t.Fatalf("FlushBotMessages() = %v, want [10 11 12]", ids)
	}

	// The queue clears on read.
	ids, err = store.FlushBotMessages(ctx, "u")
	if err != nil {
		t.Fatalf("second FlushBotMessages() error = %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("second FlushBotMessages() = %v, want empty", ids)
	}
}

func TestConversationStateClone(t *testing.T) {
	t.Parallel()

	st := NewConversationState(time.Now())
	st.Weight = Float(1.5)
	st.Count = Int(3)

	clone := st.Clone()
	*clone.Weight = 7
	*clone.Count = 9

	if *st.Weight != 1.5 || *st.Count != 3 {
		t.Fatalf("Clone() shares pointers with the original: %+v", st)
	}
}

func TestSubmissionAssembly(t *testing.T) {
	t.Parallel()

	st := NewConversationState(time.Now())
	st.Type = contractx.DeliveryWhite
	st.Weight = Float(12.5)
	st.VolumePerUnit = Float(0.15)
	st.Count = Int(3)
	st.Volume = Float(0.45)
	st.Price = Float(1500)
	st.Description = "test"

	sub := st.Submission("42")
	if sub.UserID != "42" || sub.Type != contractx.DeliveryWhite {
		t.Fatalf("Submission() identity fields = %+v", sub)
	}
	if sub.Weight != 12.5 || sub.VolumePerUnit != 0.15 || sub.Count != 3 ||
		sub.Volume != 0.45 || sub.Price != 1500 || sub.Description != "test" {
		t.Fatalf("Submission() = %+v", sub)
	}
}
