package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	invoicebot "github.com/mkalvans/invoicebot"
	"github.com/mkalvans/invoicebot/internal/config"
	"github.com/mkalvans/invoicebot/internal/conversation"
	"github.com/mkalvans/invoicebot/internal/handler"
	"github.com/mkalvans/invoicebot/internal/middleware"
	"github.com/mkalvans/invoicebot/internal/pdf"
	"github.com/mkalvans/invoicebot/internal/repository"
	"github.com/mkalvans/invoicebot/internal/service"
	"github.com/mkalvans/invoicebot/internal/storage"
	"github.com/mkalvans/invoicebot/internal/telegram"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	migrationsFS, err := fs.Sub(invoicebot.MigrationsFS, "migrations")
	if err != nil {
		return err
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		return err
	}

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := storage.New(ctx, storage.Options{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		Secure:    cfg.MinioSecure,
	})
	if err != nil {
		return err
	}

	queries := repository.New(pool)
	conv := conversation.NewStore()

	ops := telegram.NewOpsLogger(cfg.LogTelegramChatID,
		cfg.LogTopicError, cfg.LogTopicPayment, cfg.LogTopicRefund, cfg.LogTopicRegistration)

	users := service.NewUserService(queries, ops)
	payments := service.NewPaymentService(queries, ops)

	var h *handler.Handler

	opts := []bot.Option{
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			h.Route(ctx, b, update)
		}),
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(),
			middleware.UserLoader(users),
		),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return err
	}
	ops.Bind(b)

	invoices := service.NewInvoiceService(pool, queries, pdf.NewRenderer(), store)

	h = handler.New(handler.Deps{
		Config:   cfg,
		Conv:     conv,
		Queries:  queries,
		Users:    users,
		Invoices: invoices,
		Payments: payments,
		Ops:      ops,
	})
	h.Register(b)

	go sweepConversations(ctx, conv)

	slog.Info("bot started")
	b.Start(ctx)
	slog.Info("bot stopped")
	return nil
}

// sweepConversations discards idle drafts, including those stuck waiting
// for a payment that never arrived.
func sweepConversations(ctx context.Context, conv *conversation.Store) {
	ticker := time.NewTicker(config.ConversationSweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := conv.Sweep(config.ConversationTTL); n > 0 {
				slog.Info("swept idle conversations", "count", n)
			}
		}
	}
}
