package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mymmrac/telego"
	"golang.org/x/sync/errgroup"

	"git.skobk.in/skobkin/telegram-meeting-bot/bot"
	"git.skobk.in/skobkin/telegram-meeting-bot/config"
	"git.skobk.in/skobkin/telegram-meeting-bot/conversation"
	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
	"git.skobk.in/skobkin/telegram-meeting-bot/scheduler"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

func main() {
	// Parse command-line flags
	verbose := flag.Bool("v", false, "Enable verbose logging (LevelInfo)")
	veryVerbose := flag.Bool("vv", false, "Enable very verbose logging (LevelDebug)")
	setRole := flag.String("set-role", "", "Assign a role and exit, format: <telegram-id>:<organizer|staff>")
	flag.Parse()

	// Set up logging
	setLogLevel(*verbose, *veryVerbose)

	slog.Debug("main: Command-line flags parsed", "verbose", *verbose, "very_verbose", *veryVerbose)

	cfg, err := config.Load()
	if err != nil && !(errors.Is(err, config.ErrMissingToken) && *setRole != "") {
		slog.Error("main: Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	slog.Debug("main: Initializing storage", "db_path", cfg.DatabasePath)
	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("main: Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("main: Failed to close storage", "error", err)
		}
	}()
	slog.Debug("main: Storage initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *setRole != "" {
		if err := assignRole(ctx, store, *setRole); err != nil {
			slog.Error("main: Failed to assign role", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, store); err != nil {
		slog.Error("main: Bot stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("main: Bot stopped")
}

func run(ctx context.Context, cfg config.Config, store *storage.Storage) error {
	states, err := stateStore(ctx, cfg)
	if err != nil {
		return err
	}

	// Initialize bot
	slog.Debug("main: Initializing bot")
	api, err := telego.NewBot(cfg.TelegramToken, telego.WithDefaultLogger(false, true))
	if err != nil {
		return fmt.Errorf("failed to initialize bot: %w", err)
	}
	sender := messenger.NewTelegramSender(api)

	if _, err := scheduler.Sweep(ctx, store, time.Now()); err != nil {
		return fmt.Errorf("startup sweep failed: %w", err)
	}

	dialogue := bot.NewDialogue(store, states, sender, bot.WithLocation(cfg.Location))
	reminders := scheduler.NewReminderDispatcher(store, sender, bot.ReminderText, cfg.ReminderInterval, cfg.ReminderMaxAttempts)
	roles := scheduler.NewRoleNotifier(store, sender, bot.RoleAnnouncement, cfg.RoleCheckInterval)

	slog.Info("main: Starting bot...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.NewBot(api, dialogue).Run(ctx)
	})
	g.Go(func() error {
		return reminders.Run(ctx)
	})
	g.Go(func() error {
		return roles.Run(ctx)
	})

	return g.Wait()
}

// stateStore keeps dialogues in Redis when REDIS_URL is set and in memory otherwise
func stateStore(ctx context.Context, cfg config.Config) (conversation.Store, error) {
	if cfg.RedisURL == "" {
		slog.Debug("main: Using in-memory conversation state")
		return conversation.NewMemoryStore(), nil
	}

	client, err := conversation.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Debug("main: Using redis conversation state", "ttl", cfg.ConversationTTL)
	return conversation.NewRedisStore(client, cfg.ConversationTTL), nil
}

func assignRole(ctx context.Context, store *storage.Storage, arg string) error {
	rawID, rawRole, ok := strings.Cut(arg, ":")
	if !ok {
		return fmt.Errorf("expected <telegram-id>:<role>, got %q", arg)
	}
	telegramID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram id %q: %w", rawID, err)
	}
	role, ok := storage.ParseRole(rawRole)
	if !ok {
		return fmt.Errorf("unknown role %q", rawRole)
	}

	if err := store.AssignRole(ctx, telegramID, role); err != nil {
		return err
	}
	slog.Warn("main: Role assigned", "telegram_id", telegramID, "role", role)
	return nil
}

// setLogLevel configures the logging level based on the provided flags
func setLogLevel(verbose, veryVerbose bool) {
	// Determine logging level based on flags
	logLevel := slog.LevelWarn // Default level
	if veryVerbose {
		logLevel = slog.LevelDebug
	} else if verbose {
		logLevel = slog.LevelInfo
	}

	// Configure structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Debug("main: Log level set to", "level", logLevel.String())
}
