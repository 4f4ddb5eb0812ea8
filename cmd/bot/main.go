package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/schooldesk/admin-bot/internal/api"
	"github.com/schooldesk/admin-bot/internal/app"
	"github.com/schooldesk/admin-bot/internal/bot/handlers"
	"github.com/schooldesk/admin-bot/internal/config"
	"github.com/schooldesk/admin-bot/internal/db"
	"github.com/schooldesk/admin-bot/internal/jobs"
	"github.com/schooldesk/admin-bot/internal/logging"
	"github.com/schooldesk/admin-bot/internal/observability"
	"github.com/schooldesk/admin-bot/internal/session"
)

var release = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}
	time.Local = cfg.Location

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("логгер: %v", err)
	}
	defer lg.Closer()
	logger := lg.Sugar

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		logger.Warnw("sentry не инициализировался", "err", err)
	}
	defer flushSentry()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("подключение к БД сессий", "err", err)
	}
	defer database.Close()
	if err := db.Migrate(database); err != nil {
		logger.Fatalw("миграции", "err", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatalw("запуск бота", "err", err)
	}
	logger.Infow("бот запущен", "username", bot.Self.UserName, "env", cfg.Env)

	env := &handlers.Env{
		Bot:      bot,
		API:      api.New(cfg.APIBaseURL, logger),
		Sessions: session.NewStore(database, logger),
		Log:      logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.StartHTTP(ctx, cfg.HTTPAddr, database)

	runner := jobs.New(ctx)
	runner.Every(cfg.CourseRefresh, "course_refresh", jobs.RefreshOpenCards(logger))

	dispatcher := app.NewDispatcher(env)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			logger.Infow("бот останавливается")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go dispatcher.Dispatch(update)
		}
	}
}
