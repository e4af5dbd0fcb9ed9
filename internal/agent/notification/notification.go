package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// Notifier delivers a single message to one external service.
type Notifier interface {
	Send(msg, level string) error
}

// Service fans notifications out to every configured backend.
type Service struct {
	notifiers []Notifier
}

// New creates a notification service from the configured credentials.
// Backends with empty credentials are left out.
func New(discordWebhook, telegramToken, telegramChatID string) *Service {
	s := &Service{}
	if discordWebhook != "" {
		s.notifiers = append(s.notifiers, &Discord{WebhookURL: discordWebhook})
	}
	if telegramToken != "" && telegramChatID != "" {
		s.notifiers = append(s.notifiers, &Telegram{BotToken: telegramToken, ChatID: telegramChatID})
	}
	return s
}

// Send delivers a message to all configured backends.
func (s *Service) Send(msg, level string) {
	full := fmt.Sprintf("[storemirror] %s: %s", level, msg)
	for _, n := range s.notifiers {
		if err := n.Send(full, level); err != nil {
			log.Printf("Notification error: %v", err)
		}
	}
}

// Discord posts to a webhook URL.
type Discord struct {
	WebhookURL string
}

func (d *Discord) Send(msg, level string) error {
	payload, _ := json.Marshal(map[string]string{"content": msg})
	resp, err := http.Post(d.WebhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("discord request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord returned status %d", resp.StatusCode)
	}
	return nil
}

// Telegram posts via the bot API.
type Telegram struct {
	BotToken string
	ChatID   string
}

func (t *Telegram) Send(msg, level string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.BotToken)
	resp, err := http.PostForm(url, map[string][]string{
		"chat_id": {t.ChatID},
		"text":    {msg},
	})
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}
