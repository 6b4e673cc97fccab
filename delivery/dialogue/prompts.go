package dialogue

import contractx "github.com/eserovd/delivery-calc-bot/delivery/contract"

// Built-in prompt texts, used whenever the dictionary sheet has no hint for
// a field. The fallback order is always: external hint, then this table.
var defaultPrompts = map[string]string{
	contractx.FieldWeight:        "Введите вес одной единицы в киллограммах:",
	contractx.FieldVolumePerUnit: "Введите объем единицы товара (м³):",
	contractx.FieldCount:         "Введите количество единиц товара:",
	contractx.FieldPrice:         "Введите стоимость товара в юанях:",
	contractx.FieldDescription:   "Введите описание товара:",
}

// Rejection texts for the retryable validation failures.
var defaultRejections = map[string]string{
	contractx.FieldWeight:        "Пожалуйста, введите корректный вес (число больше 0, например: 12.5):",
	contractx.FieldVolumePerUnit: "Пожалуйста, введите корректный объем единицы товара (например: 0.15):",
	contractx.FieldCount:         "Пожалуйста, введите корректное количество (целое число больше 0):",
	contractx.FieldPrice:         "Пожалуйста, введите корректную стоимость (число больше 0, например: 1500):",
}

const (
	msgUnknownStep   = "Неизвестный шаг. Начните заново с /calc"
	msgVolumeFailure = "Ошибка при вычислении общего объема. Попробуйте снова."
)
