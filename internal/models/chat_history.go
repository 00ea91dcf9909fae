package models

import "gorm.io/gorm"

// ChatHistory is a durably logged relayed message. Rows are written
// fire-and-forget after delivery; losing one never blocks or fails the
// relay itself.
type ChatHistory struct {
	gorm.Model // ID (primary key), CreatedAt, UpdatedAt, DeletedAt

	// RoomID is the pair session the message belongs to.
	RoomID string `gorm:"type:uuid;not null;index:idx_room_msg"`
	// SenderID is the anonymous id of the sending participant.
	SenderID string `gorm:"type:text;not null;index:idx_room_msg"`
	// Type is "text" or "audio".
	Type string `gorm:"type:text;not null"`
	// Content is the message text or the audio reference.
	Content string `gorm:"type:text;not null"`
	// DurationSeconds is set for audio messages only.
	DurationSeconds int
}
