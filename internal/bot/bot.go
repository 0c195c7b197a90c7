package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"h2s_bot/internal/config"
	"h2s_bot/internal/notifier"
	"h2s_bot/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is the Telegram bot that handles subscription commands and delivers
// notifications.
type Bot struct {
	api      telegramAPI
	registry *storage.Registry
	notify   *notifier.Notifier
	cfg      *config.Config
	log      *slog.Logger
}

// New creates a Bot with the given Telegram token.
func New(token string, registry *storage.Registry, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:      api,
		registry: registry,
		cfg:      cfg,
		log:      log,
	}, nil
}

// SetNotifier wires the notifier in. It must be called before Run; the
// notifier itself needs the Bot as its Sender, hence the two-step setup.
func (b *Bot) SetNotifier(n *notifier.Notifier) {
	b.notify = n
}

// Run starts the bot's long-polling loop, blocking until ctx is
// cancelled. Each update is handled in its own goroutine, concurrently
// with the poller.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.cfg.IsUserAllowed(update.Message.From.ID) {
				_ = b.SendMessage(update.Message.Chat.ID, "Access denied.")
				continue
			}
			go b.handleCommand(update.Message)
		}
	}
}

// SendMessage sends a text message to the given chat. Failures are
// logged; the returned error lets fan-out callers count them.
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
		return err
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	_ = b.SendMessage(chatID, text)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := msg.CommandArguments()
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "watch":
		b.handleWatch(chatID, args)
	case "unwatch":
		b.handleUnwatch(chatID, args)
	case "unsubscribe":
		b.handleUnsubscribe(chatID)
	case "subscriptions":
		b.handleSubscriptions(chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
