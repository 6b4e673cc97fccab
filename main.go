package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/eserovd/delivery-calc-bot/delivery/dialogue"
	statex "github.com/eserovd/delivery-calc-bot/delivery/state"
	"github.com/eserovd/delivery-calc-bot/delivery/telegram"
	configx "github.com/eserovd/delivery-calc-bot/pkg/config"
	logx "github.com/eserovd/delivery-calc-bot/pkg/logger"
	sheetsx "github.com/eserovd/delivery-calc-bot/pkg/sheets"
)

type AppConfig struct {
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	UpdateTimeout    int    `envconfig:"UPDATE_TIMEOUT" default:"30"`
	// SessionStore selects where in-flight dialogues live: "memory" keeps
	// them in process, "postgres" survives restarts.
	SessionStore string `envconfig:"SESSION_STORE" default:"memory"`
}

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	appCfg := configx.MustNew[AppConfig]("")
	sheetsCfg := configx.MustNew[sheetsx.Config]("GOOGLE")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder, err := sheetsx.New(ctx, *sheetsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init sheets client")
	}

	var store statex.Store
	switch appCfg.SessionStore {
	case "postgres":
		pgCfg := configx.MustNew[statex.PostgresConfig]("POSTGRES")
		pg, err := statex.NewPostgresStore(*pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("init postgres session store")
		}
		if err := pg.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("migrate postgres session store")
		}
		store = pg
	default:
		store = statex.NewMemoryStore()
	}

	bot, err := tgbotapi.NewBotAPI(appCfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("init telegram bot")
	}

	handler, err := telegram.NewHandler(bot, store, dialogue.New(recorder), recorder)
	if err != nil {
		log.Fatal().Err(err).Msg("init update handler")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = appCfg.UpdateTimeout
	updates := bot.GetUpdatesChan(u)

	log.Info().Str("username", bot.Self.UserName).Str("store", appCfg.SessionStore).Msg("bot started")
	handler.Run(ctx, updates)
	bot.StopReceivingUpdates()
	log.Info().Msg("bot stopped")
}
