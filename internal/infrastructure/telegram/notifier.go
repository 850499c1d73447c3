package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"NewsCredibility/internal/ports"
)

var errMisconfigured = errors.New("telegram notifier misconfigured")

// Notifier sends moderation alerts to a Telegram chat via bot API.
type Notifier struct {
	endpoint string
	botToken string
	chatID   string
	client   *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. The bot is verified
// lazily on the first alert so startup never blocks on Telegram.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		endpoint: tgbotapi.APIEndpoint,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishAlert posts a plain-text message to the configured chat. A numeric
// chat id targets a chat, anything else is treated as a channel username.
func (n *Notifier) PublishAlert(ctx context.Context, message string) error {
	if n.botToken == "" || n.chatID == "" {
		return errMisconfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	bot, err := n.api()
	if err != nil {
		return err
	}

	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(n.chatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, message)
	} else {
		msg = tgbotapi.NewMessageToChannel(ensureAt(n.chatID), message)
	}
	msg.DisableWebPagePreview = true

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (n *Notifier) api() (*tgbotapi.BotAPI, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.bot != nil {
		return n.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(n.botToken, n.endpoint, n.client)
	if err != nil {
		return nil, fmt.Errorf("connect bot: %w", err)
	}
	n.bot = bot
	return bot, nil
}

func ensureAt(channel string) string {
	if strings.HasPrefix(channel, "@") {
		return channel
	}
	return "@" + channel
}
