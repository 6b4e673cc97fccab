package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	msgGreeting = "Привет! Я бот для расчета стоимости доставки из Китая.\n\n" +
		"Выберите команду:\n\n" +
		"/calc - для расчета доставки"

	msgHelp = "Я помогу рассчитать стоимость доставки из Китая.\n\n" +
		"Для начала расчета используйте команду /calc\n" +
		"Бот запросит у вас:\n" +
		"- Тип доставки (карго/белая)\n" +
		"- Вес груза (кг)\n" +
		"- Объем единицы товара (м³)\n" +
		"- Количество единиц товара\n" +
		"- Стоимость товара (юани)\n" +
		"- Описание товара"

	msgChooseType    = "Выберите тип доставки:"
	msgCalculating   = "Выполняется расчет, пожалуйста, подождите..."
	msgNoUser        = "Ошибка: не удалось определить пользователя"
	msgBadCallback   = "Ошибка: не удалось обработать запрос"
	msgNoSession     = "Пожалуйста, начните расчет заново с помощью команды /calc"
	msgInputFailure  = "Произошла ошибка при обработке данных. Пожалуйста, начните заново с /calc"
	msgCalcFailure   = "Произошла ошибка при расчете стоимости. Пожалуйста, попробуйте позже."
	msgHistoryFailed = "Произошла ошибка при получении истории."
)

// Inbound callback data values.
const (
	cbTypeCargo   = "type_cargo"
	cbTypeWhite   = "type_white"
	cbStartOver   = "start_over"
	cbShowHistory = "show_history"
)

func typeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Карго", cbTypeCargo),
			tgbotapi.NewInlineKeyboardButtonData("Белая", cbTypeWhite),
		),
	)
}

func followUpKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Новый расчет", cbStartOver),
			tgbotapi.NewInlineKeyboardButtonData("История", cbShowHistory),
		),
	)
}

func commandKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("/calc")),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}
