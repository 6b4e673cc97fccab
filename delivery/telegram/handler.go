// Package telegram adapts Telegram updates to the dialogue engine: it owns
// the update loop, session lookup, prompt/keyboard replies and the cleanup
// of previously sent bot messages.
package telegram

import (
	"context"
	"errors"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	contractx "github.com/eserovd/delivery-calc-bot/delivery/contract"
	"github.com/eserovd/delivery-calc-bot/delivery/dialogue"
	"github.com/eserovd/delivery-calc-bot/delivery/render"
	statex "github.com/eserovd/delivery-calc-bot/delivery/state"
)

// API is the slice of tgbotapi.BotAPI the handler uses. Kept narrow so
// tests can run against a fake transport.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler struct {
	api      API
	store    statex.Store
	engine   *dialogue.Engine
	recorder contractx.Recorder
}

func NewHandler(api API, store statex.Store, engine *dialogue.Engine, recorder contractx.Recorder) (*Handler, error) {
	if api == nil {
		return nil, errors.New("telegram api is required")
	}
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if engine == nil {
		return nil, errors.New("dialogue engine is required")
	}
	if recorder == nil {
		return nil, errors.New("recorder is required")
	}
	return &Handler{api: api, store: store, engine: engine, recorder: recorder}, nil
}

// Run consumes the update channel until ctx is cancelled. Updates are
// handled one at a time, so state mutations for any user are serialized.
func (h *Handler) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, upd)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		h.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.IsCommand():
		h.handleCommand(ctx, upd.Message)
	case upd.Message != nil:
		h.handleText(ctx, upd.Message)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		reply := tgbotapi.NewMessage(msg.Chat.ID, msgGreeting)
		reply.ReplyMarkup = commandKeyboard()
		h.send(reply)
	case "help":
		h.send(tgbotapi.NewMessage(msg.Chat.ID, msgHelp))
	case "calc":
		if msg.From == nil {
			h.send(tgbotapi.NewMessage(msg.Chat.ID, msgNoUser))
			return
		}
		h.beginCalculation(ctx, userID(msg.From), msg.Chat.ID)
	case "history":
		if msg.From == nil {
			h.send(tgbotapi.NewMessage(msg.Chat.ID, msgNoUser))
			return
		}
		h.showHistory(ctx, userID(msg.From), msg.Chat.ID)
	}
}

// beginCalculation discards any in-flight session and presents the
// delivery-type choice.
func (h *Handler) beginCalculation(ctx context.Context, user string, chatID int64) {
	st := statex.NewConversationState(time.Now())
	if err := h.store.Set(ctx, user, st); err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("reset session")
		h.send(tgbotapi.NewMessage(chatID, msgInputFailure))
		return
	}

	reply := tgbotapi.NewMessage(chatID, msgChooseType)
	reply.ReplyMarkup = typeKeyboard()
	h.sendTracked(ctx, user, reply)
}

func (h *Handler) showHistory(ctx context.Context, user string, chatID int64) {
	rows, err := h.recorder.History(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("fetch history")
		h.send(tgbotapi.NewMessage(chatID, msgHistoryFailed))
		return
	}
	h.send(tgbotapi.NewMessage(chatID, render.History(rows)))
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Ack first so the button stops spinning even if handling fails.
	if _, err := h.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Debug().Err(err).Msg("callback ack")
	}

	if cb.From == nil || cb.Message == nil {
		return
	}
	user := userID(cb.From)
	chatID := cb.Message.Chat.ID

	switch cb.Data {
	case cbStartOver:
		h.beginCalculation(ctx, user, chatID)
	case cbShowHistory:
		h.showHistory(ctx, user, chatID)
	case cbTypeCargo, cbTypeWhite:
		h.handleTypeChoice(ctx, user, chatID, cb.Data)
	default:
		h.send(tgbotapi.NewMessage(chatID, msgBadCallback))
	}
}

func (h *Handler) handleTypeChoice(ctx context.Context, user string, chatID int64, data string) {
	st, err := h.store.Get(ctx, user)
	if err != nil {
		if !errors.Is(err, statex.ErrStateNotFound) {
			log.Error().Err(err).Str("user_id", user).Msg("load session")
		}
		h.send(tgbotapi.NewMessage(chatID, msgNoSession))
		return
	}

	next := st.Clone()
	next.Type = contractx.DeliveryCargo
	if data == cbTypeWhite {
		next.Type = contractx.DeliveryWhite
	}
	next.Step = contractx.StepWeight
	if err := h.store.Set(ctx, user, next); err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("save session")
		h.giveUp(ctx, user, chatID)
		return
	}

	prompt, err := h.engine.Prompt(ctx, contractx.FieldWeight)
	if err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("weight prompt")
		h.giveUp(ctx, user, chatID)
		return
	}
	h.sendTracked(ctx, user, tgbotapi.NewMessage(chatID, prompt))
}

func (h *Handler) handleText(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}
	user := userID(msg.From)
	chatID := msg.Chat.ID

	st, err := h.store.Get(ctx, user)
	if errors.Is(err, statex.ErrStateNotFound) {
		// Free text outside a session is ignored.
		return
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("load session")
		h.giveUp(ctx, user, chatID)
		return
	}

	res, err := h.engine.HandleStep(ctx, msg.Text, st)
	if err != nil {
		log.Error().Err(err).Str("user_id", user).Str("step", string(st.Step)).Msg("handle step")
		h.giveUp(ctx, user, chatID)
		return
	}

	switch {
	case !res.Valid && res.Fatal:
		h.sendTracked(ctx, user, tgbotapi.NewMessage(chatID, res.Message))
		if err := h.store.Clear(ctx, user); err != nil {
			log.Error().Err(err).Str("user_id", user).Msg("clear session")
		}
	case !res.Valid:
		// Retryable rejection: state stays as it was.
		h.sendTracked(ctx, user, tgbotapi.NewMessage(chatID, res.Message))
	case res.Complete:
		h.finishCalculation(ctx, user, chatID, res.NewState)
	default:
		if err := h.store.Set(ctx, user, res.NewState); err != nil {
			log.Error().Err(err).Str("user_id", user).Msg("save session")
			h.giveUp(ctx, user, chatID)
			return
		}
		h.sendTracked(ctx, user, tgbotapi.NewMessage(chatID, res.Message))
	}
}

// finishCalculation runs the submission pipeline: persist the row, wait for
// the derived cost, clean up interim bot messages and present the summary.
func (h *Handler) finishCalculation(ctx context.Context, user string, chatID int64, st *statex.ConversationState) {
	h.sendTracked(ctx, user, tgbotapi.NewMessage(chatID, msgCalculating))

	sub := st.Submission(user)
	row, err := h.recorder.Submit(ctx, sub)
	if err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("submit calculation")
		h.apologizeAndClear(ctx, user, chatID)
		return
	}

	result, err := h.recorder.AwaitResult(ctx, row)
	if err != nil {
		log.Error().Err(err).Str("user_id", user).Int("row", row).Msg("await result")
		h.apologizeAndClear(ctx, user, chatID)
		return
	}

	h.deleteTracked(ctx, user, chatID)

	reply := tgbotapi.NewMessage(chatID, render.CalculationResult(st, result))
	reply.ReplyMarkup = followUpKeyboard()
	h.send(reply)

	if err := h.recorder.AppendHistory(ctx, sub, result); err != nil {
		// The calculation already succeeded; a missing history row is not
		// worth an apology.
		log.Error().Err(err).Str("user_id", user).Msg("append history")
	}

	if err := h.store.Clear(ctx, user); err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("clear session")
	}
}

// deleteTracked removes every bot message queued since the last flush.
// Deletion is cosmetic: failures are logged and swallowed.
func (h *Handler) deleteTracked(ctx context.Context, user string, chatID int64) {
	ids, err := h.store.FlushBotMessages(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("flush bot messages")
		return
	}
	for _, id := range ids {
		if _, err := h.api.Request(tgbotapi.NewDeleteMessage(chatID, id)); err != nil {
			log.Debug().Err(err).Int("message_id", id).Msg("delete bot message")
		}
	}
}

func (h *Handler) apologizeAndClear(ctx context.Context, user string, chatID int64) {
	h.send(tgbotapi.NewMessage(chatID, msgCalcFailure))
	if err := h.store.Clear(ctx, user); err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("clear session")
	}
}

func (h *Handler) giveUp(ctx context.Context, user string, chatID int64) {
	h.send(tgbotapi.NewMessage(chatID, msgInputFailure))
	if err := h.store.Clear(ctx, user); err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("clear session")
	}
}

func (h *Handler) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	sent, err := h.api.Send(c)
	if err != nil {
		log.Error().Err(err).Msg("send message")
		return tgbotapi.Message{}, false
	}
	return sent, true
}

// sendTracked sends and remembers the message id for later cleanup.
func (h *Handler) sendTracked(ctx context.Context, user string, c tgbotapi.Chattable) {
	sent, ok := h.send(c)
	if !ok {
		return
	}
	if err := h.store.PushBotMessage(ctx, user, sent.MessageID); err != nil {
		log.Error().Err(err).Str("user_id", user).Msg("track bot message")
	}
}

func userID(from *tgbotapi.User) string {
	return strconv.FormatInt(from.ID, 10)
}
