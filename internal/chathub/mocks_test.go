package chathub_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"cloudchat/backend/internal/models"
)

// MockStorage is a testify/mock implementation of the storage.Storage
// interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) SaveRoom(room *models.ChatRoom) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *MockStorage) CloseRoom(roomID string) error {
	args := m.Called(roomID)
	return args.Error(0)
}

func (m *MockStorage) SaveMessage(msg *models.ChatHistory) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) PublishRelay(env models.RelayEnvelope) error {
	args := m.Called(env)
	return args.Error(0)
}

func (m *MockStorage) RelayEvents() (<-chan models.RelayEnvelope, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if ch, ok := args.Get(0).(chan models.RelayEnvelope); ok {
		return ch, args.Error(1)
	}
	return args.Get(0).(<-chan models.RelayEnvelope), args.Error(1)
}

func (m *MockStorage) AddToSearchingSet(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) RemoveFromSearchingSet(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) SearchingIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockClient is a test double for the chathub.Client interface. Events the
// hub delivers land in RecvChannel.
type MockClient struct {
	userID      string
	RecvChannel chan models.ServerEvent
	closed      bool
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID:      userID,
		RecvChannel: make(chan models.ServerEvent, 32), // buffered to prevent blocking in tests
	}
}

func (c *MockClient) GetUserID() string                         { return c.userID }
func (c *MockClient) GetSendChannel() chan<- models.ServerEvent { return c.RecvChannel }
func (c *MockClient) Run()                                      {}
func (c *MockClient) Close()                                    { c.closed = true }

// recvEvent waits for the next event delivered to the client.
func recvEvent(t *testing.T, c *MockClient) models.ServerEvent {
	t.Helper()
	select {
	case ev := <-c.RecvChannel:
		return ev
	case <-time.After(time.Second):
		t.Fatalf("client %s did not receive an event in time", c.userID)
		return models.ServerEvent{}
	}
}

// assertNoEvent asserts nothing was delivered to the client.
func assertNoEvent(t *testing.T, c *MockClient) {
	t.Helper()
	select {
	case ev := <-c.RecvChannel:
		t.Fatalf("client %s unexpectedly received %+v", c.userID, ev)
	case <-time.After(50 * time.Millisecond):
	}
}
