package notification

import (
	"context"
	"sync"
)

// SentNotification records one Notify call
type SentNotification struct {
	Kind      Kind
	Recipient string
	Token     string
}

// MockNotifier records notifications for tests instead of sending them
type MockNotifier struct {
	mu   sync.Mutex
	sent []SentNotification
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Notify records the call
func (m *MockNotifier) Notify(ctx context.Context, kind Kind, recipient, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, SentNotification{Kind: kind, Recipient: recipient, Token: token})
	return nil
}

// Sent returns a copy of the recorded notifications
func (m *MockNotifier) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentNotification, len(m.sent))
	copy(out, m.sent)
	return out
}

// Last returns the most recent notification, if any
func (m *MockNotifier) Last() (SentNotification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		return SentNotification{}, false
	}
	return m.sent[len(m.sent)-1], true
}
