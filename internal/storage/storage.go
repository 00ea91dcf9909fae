package storage

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cloudchat/backend/internal/models"
)

// relayChannel is the Redis pub/sub channel carrying cross-instance
// deliveries.
const relayChannel = "relay:events"

// searchingSetKey mirrors the ids currently searching, for ops tooling.
const searchingSetKey = "search_queue"

// Storage is the persistence collaborator the hub calls into. Everything
// here runs off the hot path of matching and relay.
type Storage interface {
	SaveUser(user *models.User) error
	SaveRoom(room *models.ChatRoom) error
	CloseRoom(roomID string) error
	SaveMessage(msg *models.ChatHistory) error

	PublishRelay(env models.RelayEnvelope) error
	RelayEvents() (<-chan models.RelayEnvelope, error)

	AddToSearchingSet(userID string) error
	RemoveFromSearchingSet(userID string) error
	SearchingIDs() ([]string, error)
}

// Service backs Storage with PostgreSQL (gorm) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveUser persists the registered profile snapshot.
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// SaveRoom persists the mirror row of a freshly created pair session.
func (s *Service) SaveRoom(room *models.ChatRoom) error {
	return s.DB.Save(room).Error
}

// CloseRoom marks the room ended, setting IsActive = false and EndedAt = NOW().
func (s *Service) CloseRoom(roomID string) error {
	return s.DB.Model(&models.ChatRoom{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  gorm.Expr("NOW()"),
		}).Error
}

// SaveMessage durably logs a relayed message.
func (s *Service) SaveMessage(msg *models.ChatHistory) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", msg.RoomID, err)
		return err
	}
	return nil
}

// PublishRelay publishes a delivery envelope so the instance holding the
// target connection can forward it.
func (s *Service) PublishRelay(env models.RelayEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, relayChannel, string(data)).Err()
}

// RelayEvents subscribes to the relay channel and returns a channel of
// decoded envelopes. Malformed payloads are logged and skipped.
func (s *Service) RelayEvents() (<-chan models.RelayEnvelope, error) {
	pubsub := s.Redis.Subscribe(s.Ctx, relayChannel)
	if _, err := pubsub.Receive(s.Ctx); err != nil {
		return nil, err
	}

	out := make(chan models.RelayEnvelope)
	go func() {
		defer pubsub.Close()
		for msg := range pubsub.Channel() {
			var env models.RelayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("Error unmarshalling relay envelope: %v", err)
				continue
			}
			out <- env
		}
		close(out)
	}()
	return out, nil
}

// AddToSearchingSet mirrors a searching participant into Redis.
func (s *Service) AddToSearchingSet(userID string) error {
	return s.Redis.SAdd(s.Ctx, searchingSetKey, userID).Err()
}

// RemoveFromSearchingSet drops a participant from the mirror set.
func (s *Service) RemoveFromSearchingSet(userID string) error {
	return s.Redis.SRem(s.Ctx, searchingSetKey, userID).Err()
}

// SearchingIDs returns every id currently mirrored as searching.
func (s *Service) SearchingIDs() ([]string, error) {
	return s.Redis.SMembers(s.Ctx, searchingSetKey).Result()
}
