package models

// Client-to-server event types.
const (
	EventRegister     = "register"
	EventSearch       = "search"
	EventCancelSearch = "cancel_search"
	EventSendMessage  = "send_message"
	EventSendAudio    = "send_audio"
	EventTyping       = "typing"
	EventEndChat      = "end_chat"
)

// Server-to-client event types.
const (
	EventRegistered      = "registered"
	EventError           = "error"
	EventMatched         = "matched"
	EventSearching       = "searching"
	EventSearchCancelled = "search_cancelled"
	EventMessage         = "message"
	EventMessageAck      = "message_ack"
	EventAudioMessage    = "audio_message"
	EventAudioAck        = "audio_ack"
	EventPartnerTyping   = "partner_typing"
	EventChatEnded       = "chat_ended"
)

// Reasons carried by chat_ended events.
const (
	ReasonYouLeft             = "you_left"
	ReasonPartnerLeft         = "partner_left"
	ReasonPartnerDisconnected = "partner_disconnected"
)

// ClientEvent is the JSON envelope a transport decodes from the wire and
// hands to the hub. Only the fields relevant to the Type are populated.
type ClientEvent struct {
	Type string `json:"type"`

	// register
	Name   string `json:"name,omitempty"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`

	// search
	TargetGender string `json:"target_gender,omitempty"`
	AgeGroup     string `json:"age_group,omitempty"`

	// send_message / send_audio
	Text            string `json:"text,omitempty"`
	AudioRef        string `json:"audio_ref,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	ClientTimestamp int64  `json:"client_timestamp,omitempty"`

	// typing
	IsTyping bool `json:"is_typing,omitempty"`
}

// ServerEvent is the JSON envelope written back to a client.
type ServerEvent struct {
	Type string `json:"type"`

	ParticipantID string       `json:"participant_id,omitempty"`
	PairID        string       `json:"pair_id,omitempty"`
	Partner       *PartnerInfo `json:"partner,omitempty"`

	ID              string `json:"id,omitempty"`
	Text            string `json:"text,omitempty"`
	AudioRef        string `json:"audio_ref,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	ServerTimestamp int64  `json:"server_timestamp,omitempty"`
	// ClientTimestamp is display metadata only; ordering always follows
	// the server timestamp.
	ClientTimestamp int64 `json:"client_timestamp,omitempty"`

	IsTyping *bool `json:"is_typing,omitempty"`

	// chat_ended reason or error reason code.
	Reason string `json:"reason,omitempty"`
	// Field names the offending input field on error events.
	Field string `json:"field,omitempty"`
}

// ErrorEvent builds the error envelope for a ValidationError.
func ErrorEvent(err *ValidationError) ServerEvent {
	return ServerEvent{Type: EventError, Field: err.Field, Reason: err.Reason}
}

// RelayEnvelope wraps a ServerEvent published through Redis so another
// instance holding the target connection can deliver it.
type RelayEnvelope struct {
	TargetID string      `json:"target_id"`
	Event    ServerEvent `json:"event"`
}
