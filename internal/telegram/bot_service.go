// Package telegram is the secondary transport: Telegram chats drive the
// same hub as WebSocket connections through the chathub.Client interface.
package telegram

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"cloudchat/backend/internal/chathub"
	"cloudchat/backend/internal/localization"
	"cloudchat/backend/internal/models"
)

// BotService receives Telegram updates and routes them into the hub.
type BotService struct {
	BotAPI    *tgbotapi.BotAPI
	Hub       *chathub.ManagerService
	Localizer *localization.Localizer

	// clients maps a Telegram chat id to its hub client. Accessed only
	// from the update loop goroutine.
	clients map[int64]*Client
}

// NewBotService creates a BotService authorized with the given token.
func NewBotService(token string, hub *chathub.ManagerService, localizationPath string) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("Authorized on account %s", bot.Self.UserName)

	localizer, err := localization.NewLocalizer(localizationPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create localizer: %w", err)
	}

	return &BotService{
		BotAPI:    bot,
		Hub:       hub,
		Localizer: localizer,
		clients:   make(map[int64]*Client),
	}, nil
}

// Run polls Telegram for updates. Blocks; start as a goroutine.
func (s *BotService) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range s.BotAPI.GetUpdatesChan(u) {
		if update.Message == nil {
			continue
		}
		s.handleMessage(update.Message)
	}
}

func (s *BotService) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	lang := localization.DefaultLang
	if msg.From != nil && msg.From.LanguageCode != "" {
		lang = msg.From.LanguageCode
	}

	if msg.IsCommand() && msg.Command() == "start" {
		s.startSession(chatID, lang)
		return
	}

	client := s.liveClient(chatID)
	if client == nil {
		s.reply(chatID, s.Localizer.GetString(lang, "welcome"))
		return
	}

	if !msg.IsCommand() {
		client.forward(models.ClientEvent{
			Type:            models.EventSendMessage,
			Text:            msg.Text,
			ClientTimestamp: int64(msg.Date) * 1000,
		})
		return
	}

	switch msg.Command() {
	case "profile":
		ev, ok := parseProfileArgs(msg.CommandArguments())
		if !ok {
			s.reply(chatID, s.Localizer.GetString(client.lang, "usage.profile"))
			return
		}
		client.forward(ev)

	case "search":
		ev, ok := parseSearchArgs(msg.CommandArguments())
		if !ok {
			s.reply(chatID, s.Localizer.GetString(client.lang, "usage.search"))
			return
		}
		client.forward(ev)

	case "stop":
		client.forward(models.ClientEvent{Type: models.EventCancelSearch})

	case "end":
		client.forward(models.ClientEvent{Type: models.EventEndChat})

	case "quit":
		delete(s.clients, chatID)
		s.Hub.UnregisterCh <- client

	default:
		s.reply(chatID, s.Localizer.GetString(client.lang, "error.generic"))
	}
}

// liveClient returns the hub client for the chat, evicting the map entry
// first when its write loop has already exited (the hub dropped the
// connection, e.g. for a full send buffer). Commands from the chat then get
// the welcome prompt instead of being forwarded to an unregistered id.
func (s *BotService) liveClient(chatID int64) *Client {
	client, ok := s.clients[chatID]
	if !ok {
		return nil
	}
	if client.closed() {
		delete(s.clients, chatID)
		return nil
	}
	return client
}

// startSession creates a fresh hub client for the chat. /start on a live
// session drops the old connection first, like a page reload would.
func (s *BotService) startSession(chatID int64, lang string) {
	if old, ok := s.clients[chatID]; ok {
		delete(s.clients, chatID)
		s.Hub.UnregisterCh <- old
	}

	client := &Client{
		userID:    uuid.New().String(),
		chatID:    chatID,
		lang:      lang,
		bot:       s.BotAPI,
		hub:       s.Hub,
		localizer: s.Localizer,
		Send:      make(chan models.ServerEvent, 64),
		done:      make(chan struct{}),
	}
	s.clients[chatID] = client

	s.Hub.RegisterCh <- client
	client.Run()
	s.reply(chatID, s.Localizer.GetString(lang, "welcome"))
}

func (s *BotService) reply(chatID int64, text string) {
	if _, err := s.BotAPI.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Error sending Telegram message to %d: %v", chatID, err)
	}
}

// parseProfileArgs parses "/profile <name> <age> <gender>".
func parseProfileArgs(args string) (models.ClientEvent, bool) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return models.ClientEvent{}, false
	}
	age, err := strconv.Atoi(fields[1])
	if err != nil {
		return models.ClientEvent{}, false
	}
	return models.ClientEvent{
		Type:   models.EventRegister,
		Name:   fields[0],
		Age:    age,
		Gender: fields[2],
	}, true
}

// parseSearchArgs parses "/search <target gender> <age group>".
func parseSearchArgs(args string) (models.ClientEvent, bool) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return models.ClientEvent{}, false
	}
	return models.ClientEvent{
		Type:         models.EventSearch,
		TargetGender: fields[0],
		AgeGroup:     fields[1],
	}, true
}
