package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/notexe/event-reminders/internal/event"
)

// LogNotifier writes reminders to the log.
type LogNotifier struct {
	log logrus.FieldLogger
}

// NewLogNotifier creates a notifier that logs at info level.
func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, r Reminder) error {
	n.log.WithFields(logrus.Fields{
		"user":  r.UserID,
		"event": r.Event.ID,
	}).Infof("Reminder for %s: %s is happening soon!", r.UserID, r.Event.Name)
	return nil
}

// Notifiers fans a reminder out to every notifier, collecting failures.
type Notifiers []Notifier

// Notify implements Notifier.
func (ns Notifiers) Notify(ctx context.Context, r Reminder) error {
	var errs []error
	for _, n := range ns {
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

const telegramAPIURL = "https://api.telegram.org"

// TelegramNotifier sends reminders via the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// NewTelegramNotifier creates a notifier posting to chatID.
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  telegramAPIURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// withBaseURL points the notifier at another Bot API endpoint.
func (t *TelegramNotifier) withBaseURL(baseURL string) *TelegramNotifier {
	t.baseURL = strings.TrimRight(baseURL, "/")
	return t
}

type telegramSendRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Notify implements Notifier.
func (t *TelegramNotifier) Notify(ctx context.Context, r Reminder) error {
	return t.sendMessage(ctx, FormatTelegram(r))
}

// sendMessage sends an HTML message to the configured chat.
func (t *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	body, err := json.Marshal(telegramSendRequest{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var tgResp telegramResponse
	if err := json.Unmarshal(respBody, &tgResp); err != nil {
		return fmt.Errorf("failed to parse telegram response: %w", err)
	}

	if !tgResp.OK {
		return fmt.Errorf("telegram API error: %s", tgResp.Description)
	}

	return nil
}

// FormatTelegram renders a reminder using Telegram's HTML subset.
func FormatTelegram(r Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>⏰ %s</b> is happening soon\n", escapeHTML(r.Event.Name))
	if r.Event.Description != "" {
		fmt.Fprintf(&b, "<i>%s</i>\n", escapeHTML(r.Event.Description))
	}
	fmt.Fprintf(&b, "When: %s\n", event.FormatDateTime(r.Event.DateTime))
	fmt.Fprintf(&b, "Category: %s\n", escapeHTML(r.Event.Category))
	fmt.Fprintf(&b, "User: <code>%s</code>", escapeHTML(r.UserID))
	return b.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
