// Package bot exposes the job tracker over Telegram and pushes new relevant
// postings to the configured chat.
package bot

import (
	"context"
	"fmt"
	"time"

	"linkedin-job-tracker/internal/bot/handlers"
	"linkedin-job-tracker/internal/bot/middleware"
	"linkedin-job-tracker/internal/bot/utils"
	"linkedin-job-tracker/internal/config"
	"linkedin-job-tracker/internal/tracker"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Bot represents Telegram bot
type Bot struct {
	bot     *tele.Bot
	tracker *tracker.Tracker
	limiter middleware.Limiter
	config  *config.Config
	logger  *zap.Logger
}

func New(
	cfg *config.Config,
	t *tracker.Tracker,
	limiter middleware.Limiter,
	logger *zap.Logger,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	if limiter == nil {
		limiter = middleware.NewMemoryLimiter(time.Minute)
	}

	bot := &Bot{
		bot:     b,
		tracker: t,
		limiter: limiter,
		config:  cfg,
		logger:  logger,
	}

	bot.setupMiddleware()
	bot.registerHandlers()

	logger.Info("bot initialized")

	return bot, nil
}

func (b *Bot) setupMiddleware() {
	b.bot.Use(middleware.Recovery(b.logger))
	b.bot.Use(middleware.Logger(b.logger))
	b.bot.Use(middleware.RateLimit(b.limiter, b.logger))
}

func (b *Bot) registerHandlers() {
	ctx := &handlers.Context{
		Tracker: b.tracker,
		Config:  b.config,
		Logger:  b.logger,
		Now:     time.Now,
	}

	b.bot.Handle("/start", handlers.HandleStart(ctx))
	b.bot.Handle("/help", handlers.HandleHelp(ctx))
	b.bot.Handle("/jobs", handlers.HandleJobs(ctx))
	b.bot.Handle("/job", handlers.HandleJob(ctx))
	b.bot.Handle("/status", handlers.HandleStatus(ctx))
	b.bot.Handle("/note", handlers.HandleNote(ctx))
	b.bot.Handle("/remind", handlers.HandleRemind(ctx))
	b.bot.Handle("/followups", handlers.HandleFollowUps(ctx))
	b.bot.Handle("/stats", handlers.HandleStats(ctx))

	b.bot.Handle(tele.OnText, handlers.HandleText(ctx))

	b.bot.Handle(&tele.Btn{Unique: utils.CallbackStatus}, handlers.HandleStatusButton(ctx))
	b.bot.Handle(&tele.Btn{Unique: utils.CallbackRemind}, handlers.HandleRemindButton(ctx))

	b.logger.Info("handlers registered")
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting bot")

	go b.bot.Start()

	<-ctx.Done()

	b.logger.Info("stopping bot")
	b.bot.Stop()

	return nil
}

// Telebot is used by the scheduler to push notifications.
func (b *Bot) Telebot() *tele.Bot {
	return b.bot
}
