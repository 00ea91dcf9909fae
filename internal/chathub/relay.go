package chathub

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"cloudchat/backend/internal/config"
	"cloudchat/backend/internal/models"
)

// Delivery is the outcome of a successful relay: one event for the partner,
// optionally an ack for the sender and a history row to persist. The relay
// never delivers a message back to its sender.
type Delivery struct {
	PartnerID string
	Partner   models.ServerEvent
	Ack       *models.ServerEvent
	Persist   *models.ChatHistory
}

// Relay validates and forwards chat events between the two members of a
// pair session. Runs on the hub goroutine.
type Relay struct {
	registry *Registry
	pairs    *PairTable
}

func NewRelay(registry *Registry, pairs *PairTable) *Relay {
	return &Relay{registry: registry, pairs: pairs}
}

// Text relays a text message. Precondition order, first failure wins:
// sender paired, text non-empty after trimming, length within the limit.
func (r *Relay) Text(senderID, text string, clientTS int64, now time.Time) (*Delivery, *models.ValidationError) {
	session, verr := r.activeSession(senderID)
	if verr != nil {
		return nil, verr
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &models.ValidationError{Field: "text", Reason: "empty_message"}
	}
	if utf8.RuneCountInString(trimmed) > config.MaxMessageLen {
		return nil, &models.ValidationError{Field: "text", Reason: "message_too_long"}
	}

	id := uuid.New().String()
	ts := now.UnixMilli()
	return &Delivery{
		PartnerID: session.PartnerOf(senderID),
		Partner: models.ServerEvent{
			Type:            models.EventMessage,
			ID:              id,
			Text:            trimmed,
			ServerTimestamp: ts,
			ClientTimestamp: clientTS,
		},
		Ack: &models.ServerEvent{Type: models.EventMessageAck, ID: id, ServerTimestamp: ts},
		Persist: &models.ChatHistory{
			RoomID:   session.ID,
			SenderID: senderID,
			Type:     "text",
			Content:  trimmed,
		},
	}, nil
}

// Audio relays a voice message. The audio payload travels by reference;
// the reference's byte length stands in for the payload size.
func (r *Relay) Audio(senderID, audioRef string, durationSeconds int, now time.Time) (*Delivery, *models.ValidationError) {
	session, verr := r.activeSession(senderID)
	if verr != nil {
		return nil, verr
	}

	if durationSeconds <= 0 || durationSeconds > config.MaxAudioSeconds {
		return nil, &models.ValidationError{Field: "audio", Reason: "audio_too_long"}
	}
	if audioRef == "" || len(audioRef) > config.MaxAudioBytes {
		return nil, &models.ValidationError{Field: "audio", Reason: "audio_too_large"}
	}

	id := uuid.New().String()
	ts := now.UnixMilli()
	return &Delivery{
		PartnerID: session.PartnerOf(senderID),
		Partner: models.ServerEvent{
			Type:            models.EventAudioMessage,
			ID:              id,
			AudioRef:        audioRef,
			DurationSeconds: durationSeconds,
			ServerTimestamp: ts,
		},
		Ack: &models.ServerEvent{Type: models.EventAudioAck, ID: id, ServerTimestamp: ts},
		Persist: &models.ChatHistory{
			RoomID:          session.ID,
			SenderID:        senderID,
			Type:            "audio",
			Content:         audioRef,
			DurationSeconds: durationSeconds,
		},
	}, nil
}

// Typing relays a typing indicator. Fire-and-forget: not validated beyond
// the pairing check, not acked, not persisted. A typing event from an
// unpaired sender is silently dropped (nil, nil).
func (r *Relay) Typing(senderID string, isTyping bool) (*Delivery, *models.ValidationError) {
	session, verr := r.activeSession(senderID)
	if verr != nil {
		return nil, nil
	}

	flag := isTyping
	return &Delivery{
		PartnerID: session.PartnerOf(senderID),
		Partner:   models.ServerEvent{Type: models.EventPartnerTyping, IsTyping: &flag},
	}, nil
}

func (r *Relay) activeSession(senderID string) (*PairSession, *models.ValidationError) {
	p := r.registry.Get(senderID)
	if p == nil || p.Status != models.StatusPaired {
		return nil, &models.ValidationError{Field: "state", Reason: "not_paired"}
	}
	session := r.pairs.SessionOf(senderID)
	if session == nil {
		return nil, &models.ValidationError{Field: "state", Reason: "not_paired"}
	}
	return session, nil
}
