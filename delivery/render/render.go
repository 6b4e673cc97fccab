// Package render turns conversation state and row-store data into the text
// blocks the bot sends. Two fixed templates: the completed-calculation
// summary and the numbered history listing.
package render

import (
	"fmt"
	"strconv"

	contractx "github.com/eserovd/delivery-calc-bot/delivery/contract"
	statex "github.com/eserovd/delivery-calc-bot/delivery/state"
)

const (
	// NoHistory is what an empty history query renders to, never "".
	NoHistory = "У вас пока нет истории расчетов."

	resultUnavailable = "не удалось получить результат"
)

// CalculationResult renders the completed session plus the cost computed by
// the row store. An empty result renders the fallback phrase.
func CalculationResult(st *statex.ConversationState, result string) string {
	if result == "" {
		result = resultUnavailable
	}

	var b Builder
	b.AddLine("Расчет стоимости доставки:").
		AddLine("").
		AddField("Тип", string(st.Type), "").
		AddField("Вес", floatField(st.Weight), "кг").
		AddField("Количество", intField(st.Count), "").
		AddField("Объем", floatField(st.Volume), "м³").
		AddField("Стоимость", floatField(st.Price), "¥").
		AddField("Описание", st.Description, "").
		AddLine("").
		AddField("Итоговая стоимость", result, "₽")
	return b.String()
}

// History renders the user's prior submissions as numbered blocks separated
// by blank lines.
func History(rows []contractx.HistoryRow) string {
	if len(rows) == 0 {
		return NoHistory
	}

	var b Builder
	for i, row := range rows {
		if i > 0 {
			b.AddLine("")
		}
		b.AddLine(fmt.Sprintf("%d. %s", i+1, row.Date)).
			AddField("Тип", row.Type, "").
			AddField("Вес", row.Weight, "кг").
			AddField("Объем", row.Volume, "м³").
			AddField("Цена", row.Price, "¥").
			AddField("Результат", row.Result, "₽")
	}
	return b.String()
}

func floatField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
