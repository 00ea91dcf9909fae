package models

import "time"

// ChatRoom is the persisted mirror of an in-memory pair session. It is
// written as a side effect of matching and closed when the session ends;
// the hub never reads it on the hot path.
type ChatRoom struct {
	// RoomID is the pair session id (UUID).
	RoomID string `gorm:"primaryKey"`
	// User1ID and User2ID are the anonymous ids of the two members.
	User1ID string
	User2ID string
	// IsActive is true while the session is live.
	IsActive bool
	// StartedAt is when the match was made.
	StartedAt time.Time
	// EndedAt is when the session was closed.
	EndedAt time.Time
}
