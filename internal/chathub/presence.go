package chathub

import "cloudchat/backend/internal/models"

// Presence handling: explicit end_chat and transport disconnects both funnel
// into the same idempotent cleanup, so a racing end/disconnect runs the
// sequence exactly once.

// handleEndChat ends the sender's session. The partner is notified with
// partner_left, the initiator acked with you_left. Ending when no session
// is active is a silent no-op.
func (m *ManagerService) handleEndChat(initiatorID string) {
	session := m.Pairs.SessionOf(initiatorID)
	if session == nil {
		return
	}
	m.endSession(session, initiatorID, models.ReasonPartnerLeft)
	m.send(initiatorID, models.ServerEvent{
		Type:   models.EventChatEnded,
		PairID: session.ID,
		Reason: models.ReasonYouLeft,
	})
}

// handleDisconnect runs the full cleanup sequence for a dropped connection:
// queue entry, pair session, registry entry, client map. Every step is
// idempotent.
func (m *ManagerService) handleDisconnect(c Client) {
	id := c.GetUserID()

	if _, ok := m.Clients[id]; ok {
		delete(m.Clients, id)
		c.Close()
	}

	if m.Queue.Dequeue(id) {
		m.persistAsync("mirror searching set", func() error {
			return m.Storage.RemoveFromSearchingSet(id)
		})
	}

	if session := m.Pairs.SessionOf(id); session != nil {
		m.endSession(session, id, models.ReasonPartnerDisconnected)
	}

	m.Registry.Remove(id)
}

// endSession ends the session, notifies the surviving partner with the
// given reason and resets both members to idle. Idempotent via PairTable.End;
// the second caller of a racing end/disconnect does nothing, so the partner
// is notified exactly once.
func (m *ManagerService) endSession(session *PairSession, initiatorID, partnerReason string) {
	if !m.Pairs.End(session.ID) {
		return
	}

	partnerID := session.PartnerOf(initiatorID)
	m.resetToIdle(initiatorID)
	m.resetToIdle(partnerID)

	m.send(partnerID, models.ServerEvent{
		Type:   models.EventChatEnded,
		PairID: session.ID,
		Reason: partnerReason,
	})

	roomID := session.ID
	m.persistAsync("close room", func() error {
		return m.Storage.CloseRoom(roomID)
	})
}

func (m *ManagerService) resetToIdle(id string) {
	if p := m.Registry.Get(id); p != nil {
		p.Status = models.StatusIdle
		p.Filter = nil
		p.PairID = ""
	}
}
