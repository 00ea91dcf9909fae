package telegram

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cloudchat/backend/internal/chathub"
	"cloudchat/backend/internal/localization"
	"cloudchat/backend/internal/models"
)

// Client adapts one Telegram chat to the chathub.Client interface.
type Client struct {
	userID string
	chatID int64
	lang   string

	bot       *tgbotapi.BotAPI
	hub       *chathub.ManagerService
	localizer *localization.Localizer

	Send chan models.ServerEvent
	// done is closed when the write loop exits, i.e. once the hub has
	// dropped this connection.
	done chan struct{}
}

func (c *Client) GetUserID() string                         { return c.userID }
func (c *Client) GetSendChannel() chan<- models.ServerEvent { return c.Send }

// Run starts the write loop rendering hub events into Telegram messages.
// There is no read pump; the BotService update loop feeds the hub instead.
func (c *Client) Run() {
	go c.writeLoop()
}

// Close closes the Send channel, stopping the write loop. Hub only.
func (c *Client) Close() {
	close(c.Send)
}

func (c *Client) forward(ev models.ClientEvent) {
	c.hub.IncomingCh <- chathub.InboundEvent{SenderID: c.userID, Event: ev}
}

// closed reports whether the write loop has exited. BotService uses this to
// evict clients the hub has already dropped.
func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) writeLoop() {
	defer close(c.done)
	for ev := range c.Send {
		text := c.render(ev)
		if text == "" {
			continue
		}
		if _, err := c.bot.Send(tgbotapi.NewMessage(c.chatID, text)); err != nil {
			log.Printf("Error sending Telegram message to %d: %v", c.chatID, err)
		}
	}
}

// render turns a hub event into user-facing text. Returns "" for events a
// Telegram chat has no use for (acks, typing indicators).
func (c *Client) render(ev models.ServerEvent) string {
	t := func(key string) string { return c.localizer.GetString(c.lang, key) }

	switch ev.Type {
	case models.EventRegistered:
		return t("registered")
	case models.EventSearching:
		return t("searching")
	case models.EventSearchCancelled:
		return t("search_cancelled")
	case models.EventMatched:
		if ev.Partner != nil {
			return fmt.Sprintf("%s\n%s, %d (%s)", t("matched"),
				ev.Partner.Name, ev.Partner.Age, ev.Partner.Gender)
		}
		return t("matched")
	case models.EventMessage:
		return ev.Text
	case models.EventAudioMessage:
		return fmt.Sprintf("🎤 %s (%ds)", ev.AudioRef, ev.DurationSeconds)
	case models.EventChatEnded:
		return t("chat_ended." + ev.Reason)
	case models.EventError:
		switch ev.Reason {
		case "not_registered":
			return t("error.not_registered")
		case "not_paired":
			return t("error.not_paired")
		default:
			return t("error.generic")
		}
	}
	return ""
}
