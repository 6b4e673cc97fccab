package render

import (
	"strings"
	"testing"
	"time"

	contractx "github.com/eserovd/delivery-calc-bot/delivery/contract"
	statex "github.com/eserovd/delivery-calc-bot/delivery/state"
)

func completedState() *statex.ConversationState {
	st := statex.NewConversationState(time.Now())
	st.Step = contractx.StepComplete
	st.Weight = statex.Float(12.5)
	st.VolumePerUnit = statex.Float(0.15)
	st.Count = statex.Int(3)
	st.Volume = statex.Float(0.45)
	st.Price = statex.Float(1500)
	st.Description = "test"
	return st
}

func TestCalculationResult(t *testing.T) {
	t.Parallel()

	got := CalculationResult(completedState(), "4 250")

	for _, want := range []string{
		"Расчет стоимости доставки:",
		"Тип: cargo",
		"Вес: 12.5кг",
		"Количество: 3",
		"Объем: 0.45м³",
		"Стоимость: 1500¥",
		"Описание: test",
		"Итоговая стоимость: 4 250₽",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("CalculationResult() missing %q in:\n%s", want, got)
		}
	}
}

func TestCalculationResultFallbackPhrase(t *testing.T) {
	t.Parallel()

	got := CalculationResult(completedState(), "")
	if !strings.Contains(got, "Итоговая стоимость: "+resultUnavailable+"₽") {
		t.Fatalf("CalculationResult() with empty result:\n%s", got)
	}
}

func TestCalculationResultOmitsAbsentFields(t *testing.T) {
	t.Parallel()

	st := statex.NewConversationState(time.Now())
	st.Weight = statex.Float(2)
	got := CalculationResult(st, "")

	if strings.Contains(got, "Количество:") || strings.Contains(got, "Описание:") {
		t.Fatalf("CalculationResult() printed a label for an absent field:\n%s", got)
	}
	for _, line := range strings.Split(got, "\n") {
		if strings.HasSuffix(line, ": ") {
			t.Errorf("dangling label line %q", line)
		}
	}
}

func TestHistoryEmpty(t *testing.T) {
	t.Parallel()

	if got := History(nil); got != NoHistory {
		t.Fatalf("History(nil) = %q, want no-history literal", got)
	}
	if got := History([]contractx.HistoryRow{}); got != NoHistory {
		t.Fatalf("History(empty) = %q, want no-history literal", got)
	}
}

func TestHistoryNumberedBlocks(t *testing.T) {
	t.Parallel()

	rows := []contractx.HistoryRow{
		{Date: "01.02.2026", Type: "cargo", Weight: "12.5", Volume: "0.45", Price: "1500", Result: "4250"},
		{Date: "03.02.2026", Type: "white", Weight: "3", Price: "700"},
	}

	got := History(rows)
	if !strings.HasPrefix(got, "1. 01.02.2026\n") {
		t.Fatalf("History() first block:\n%s", got)
	}
	if !strings.Contains(got, "\n\n2. 03.02.2026\n") {
		t.Fatalf("History() blocks not separated by a blank line:\n%s", got)
	}
	// Second row has no volume or result; those labels must be absent in
	// its block.
	second := got[strings.Index(got, "2. "):]
	if strings.Contains(second, "Объем:") || strings.Contains(second, "Результат:") {
		t.Fatalf("History() printed labels for absent values:\n%s", second)
	}
}

func TestBuilderSkipsEmptyValues(t *testing.T) {
	t.Parallel()

	var b Builder
	b.AddLine("head").AddField("A", "", "x").AddField("B", "v", "y")
	if got := b.String(); got != "head\nB: vy" {
		t.Fatalf("Builder = %q", got)
	}
}
