package chathub

import (
	"log"
	"time"

	"cloudchat/backend/internal/models"
	"cloudchat/backend/internal/storage"
)

// StatsSnapshot is the read-only view served by the stats endpoint.
type StatsSnapshot struct {
	OnlineCount int `json:"online_count"`
	PairedCount int `json:"paired_count"`
}

// ManagerService is the hub. Its Run goroutine is the single owner of the
// client map, the registry, the filter queue and the pair table; every
// mutation is serialized through its channels, which gives the matcher its
// atomicity without locks.
type ManagerService struct {
	Clients map[string]Client

	// Channels
	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan InboundEvent
	StatsCh      chan chan StatsSnapshot
	PubSubCh     chan models.RelayEnvelope

	Registry *Registry
	Queue    *FilterQueue
	Pairs    *PairTable
	Matcher  *Matcher
	Relay    *Relay

	Storage storage.Storage
}

func NewManagerService(s storage.Storage) *ManagerService {
	registry := NewRegistry()
	queue := NewFilterQueue()
	pairs := NewPairTable()

	return &ManagerService{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan InboundEvent),
		StatsCh:      make(chan chan StatsSnapshot),
		PubSubCh:     make(chan models.RelayEnvelope),
		Registry:     registry,
		Queue:        queue,
		Pairs:        pairs,
		Matcher:      NewMatcher(registry, queue, pairs),
		Relay:        NewRelay(registry, pairs),
		Storage:      s,
	}
}

// Run is the hub's main loop. Start it exactly once, as a goroutine.
func (m *ManagerService) Run() {
	m.startRelayListener()
	log.Println("Chat hub started.")

	for {
		select {
		case c := <-m.RegisterCh:
			m.Clients[c.GetUserID()] = c

		case c := <-m.UnregisterCh:
			m.handleDisconnect(c)

		case in := <-m.IncomingCh:
			m.dispatch(in.SenderID, in.Event)

		case env := <-m.PubSubCh:
			// Delivery published by another instance; forward if the
			// target connection lives here.
			if _, ok := m.Clients[env.TargetID]; ok {
				m.send(env.TargetID, env.Event)
			}

		case reply := <-m.StatsCh:
			reply <- StatsSnapshot{
				OnlineCount: m.Registry.Count(),
				PairedCount: m.Pairs.ActiveCount(),
			}
		}
	}
}

// Stats asks the hub goroutine for a consistent snapshot.
func (m *ManagerService) Stats() StatsSnapshot {
	reply := make(chan StatsSnapshot, 1)
	m.StatsCh <- reply
	return <-reply
}

// startRelayListener bridges the Redis relay channel into the hub loop.
func (m *ManagerService) startRelayListener() {
	if m.Storage == nil {
		return
	}
	events, err := m.Storage.RelayEvents()
	if err != nil {
		log.Printf("ERROR: Failed to subscribe to relay events: %v", err)
		return
	}
	go func() {
		for env := range events {
			m.PubSubCh <- env
		}
	}()
}

// dispatch routes one decoded client event. A malformed or out-of-state
// event only ever affects the sending connection.
func (m *ManagerService) dispatch(senderID string, ev models.ClientEvent) {
	switch ev.Type {
	case models.EventRegister:
		m.handleRegister(senderID, ev)

	case models.EventSearch:
		m.handleSearch(senderID, ev)

	case models.EventCancelSearch:
		m.handleCancelSearch(senderID)

	case models.EventSendMessage:
		d, verr := m.Relay.Text(senderID, ev.Text, ev.ClientTimestamp, time.Now())
		m.finishRelay(senderID, d, verr)

	case models.EventSendAudio:
		d, verr := m.Relay.Audio(senderID, ev.AudioRef, ev.DurationSeconds, time.Now())
		m.finishRelay(senderID, d, verr)

	case models.EventTyping:
		if d, _ := m.Relay.Typing(senderID, ev.IsTyping); d != nil {
			m.send(d.PartnerID, d.Partner)
		}

	case models.EventEndChat:
		m.handleEndChat(senderID)

	default:
		log.Printf("Unknown event type %q from %s", ev.Type, senderID)
	}
}

func (m *ManagerService) handleRegister(senderID string, ev models.ClientEvent) {
	profile := models.Profile{
		Name:   ev.Name,
		Age:    ev.Age,
		Gender: models.Gender(ev.Gender),
	}

	p, err := m.Registry.Register(senderID, profile)
	if err != nil {
		if verr, ok := err.(*models.ValidationError); ok {
			m.send(senderID, models.ErrorEvent(verr))
			return
		}
		m.send(senderID, models.ServerEvent{
			Type: models.EventError, Field: "state", Reason: "already_registered",
		})
		return
	}

	m.send(senderID, models.ServerEvent{Type: models.EventRegistered, ParticipantID: p.ID})

	m.persistAsync("save user", func() error {
		return m.Storage.SaveUser(&models.User{
			ID:     p.ID,
			Name:   p.Profile.Name,
			Age:    p.Profile.Age,
			Gender: string(p.Profile.Gender),
		})
	})
}

func (m *ManagerService) handleSearch(senderID string, ev models.ClientEvent) {
	p := m.Registry.Get(senderID)
	if p == nil {
		m.send(senderID, models.ServerEvent{
			Type: models.EventError, Field: "state", Reason: "not_registered",
		})
		return
	}
	if p.Status == models.StatusPaired {
		m.send(senderID, models.ServerEvent{
			Type: models.EventError, Field: "state", Reason: "already_paired",
		})
		return
	}

	target, ok := models.ParseTargetGender(ev.TargetGender)
	if !ok {
		m.send(senderID, models.ErrorEvent(&models.ValidationError{
			Field: "target_gender", Reason: "unknown_target_gender",
		}))
		return
	}
	group, ok := models.ParseAgeGroup(ev.AgeGroup)
	if !ok {
		m.send(senderID, models.ErrorEvent(&models.ValidationError{
			Field: "age_group", Reason: "unknown_age_group",
		}))
		return
	}

	filter := models.SearchFilter{TargetGender: target, AgeGroup: group}
	p.Status = models.StatusSearching
	p.Filter = &filter
	m.Queue.Enqueue(senderID, filter, time.Now())
	m.persistAsync("mirror searching set", func() error {
		return m.Storage.AddToSearchingSet(senderID)
	})

	session := m.Matcher.FindMatch(p, filter, time.Now())
	if session == nil {
		m.send(senderID, models.ServerEvent{Type: models.EventSearching})
		return
	}

	partnerID := session.PartnerOf(senderID)
	partner := m.Registry.Get(partnerID)

	partnerInfo := partner.SanitizedProfile()
	selfInfo := p.SanitizedProfile()
	m.send(senderID, models.ServerEvent{
		Type: models.EventMatched, PairID: session.ID, Partner: &partnerInfo,
	})
	m.send(partnerID, models.ServerEvent{
		Type: models.EventMatched, PairID: session.ID, Partner: &selfInfo,
	})

	roomID := session.ID
	m.persistAsync("save room", func() error {
		if err := m.Storage.RemoveFromSearchingSet(senderID); err != nil {
			return err
		}
		if err := m.Storage.RemoveFromSearchingSet(partnerID); err != nil {
			return err
		}
		return m.Storage.SaveRoom(&models.ChatRoom{
			RoomID:    roomID,
			User1ID:   senderID,
			User2ID:   partnerID,
			IsActive:  true,
			StartedAt: session.CreatedAt,
		})
	})
}

func (m *ManagerService) handleCancelSearch(senderID string) {
	if m.Queue.Dequeue(senderID) {
		if p := m.Registry.Get(senderID); p != nil {
			p.Status = models.StatusIdle
			p.Filter = nil
		}
		m.persistAsync("mirror searching set", func() error {
			return m.Storage.RemoveFromSearchingSet(senderID)
		})
	}
	// Idempotent: cancelling when not searching still acks.
	m.send(senderID, models.ServerEvent{Type: models.EventSearchCancelled})
}

func (m *ManagerService) finishRelay(senderID string, d *Delivery, verr *models.ValidationError) {
	if verr != nil {
		m.send(senderID, models.ErrorEvent(verr))
		return
	}
	m.send(d.PartnerID, d.Partner)
	if d.Ack != nil {
		m.send(senderID, *d.Ack)
	}
	if d.Persist != nil {
		rec := d.Persist
		m.persistAsync("save message", func() error {
			return m.Storage.SaveMessage(rec)
		})
	}
}

// send delivers an event to a participant: directly when the connection is
// local, otherwise via the Redis relay channel for whichever instance holds
// it. A client whose send buffer is full is treated as gone.
func (m *ManagerService) send(targetID string, ev models.ServerEvent) {
	if c, ok := m.Clients[targetID]; ok {
		select {
		case c.GetSendChannel() <- ev:
		default:
			log.Printf("Client %s send buffer full, dropping connection", targetID)
			m.handleDisconnect(c)
		}
		return
	}

	if m.Storage == nil {
		return
	}
	env := models.RelayEnvelope{TargetID: targetID, Event: ev}
	go func() {
		if err := m.Storage.PublishRelay(env); err != nil {
			log.Printf("ERROR: Failed to publish relay envelope for %s: %v", env.TargetID, err)
		}
	}()
}

// persistAsync runs a storage side effect off the hub goroutine. Failures
// are logged and never propagate; persistence is not on the delivery path.
func (m *ManagerService) persistAsync(what string, f func() error) {
	if m.Storage == nil {
		return
	}
	go func() {
		if err := f(); err != nil {
			log.Printf("ERROR: Failed to %s: %v", what, err)
		}
	}()
}
