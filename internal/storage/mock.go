package storage

import (
	"context"
	"sync"

	"github.com/glintlabs/glint/internal/service"
)

// MockPreferenceStore is an in-memory mock of service.PreferenceStore for
// testing.
type MockPreferenceStore struct {
	ChatPanelOpenFn    func(ctx context.Context) (bool, error)
	SetChatPanelOpenFn func(ctx context.Context, open bool) error
	ThemeFn            func(ctx context.Context) (string, error)
	SetThemeFn         func(ctx context.Context, theme string) error
	LastAccountFn      func(ctx context.Context) (string, error)
	SetLastAccountFn   func(ctx context.Context, account string) error

	mu          sync.Mutex
	chatOpen    bool
	theme       string
	lastAccount string

	SetChatPanelCalls int
}

// NewMockPreferenceStore creates a new mock preference store.
func NewMockPreferenceStore() *MockPreferenceStore {
	return &MockPreferenceStore{}
}

// ChatPanelOpen implements service.PreferenceStore.
func (m *MockPreferenceStore) ChatPanelOpen(ctx context.Context) (bool, error) {
	if m.ChatPanelOpenFn != nil {
		return m.ChatPanelOpenFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chatOpen, nil
}

// SetChatPanelOpen implements service.PreferenceStore.
func (m *MockPreferenceStore) SetChatPanelOpen(ctx context.Context, open bool) error {
	m.mu.Lock()
	m.SetChatPanelCalls++
	m.chatOpen = open
	m.mu.Unlock()

	if m.SetChatPanelOpenFn != nil {
		return m.SetChatPanelOpenFn(ctx, open)
	}
	return nil
}

// Theme implements service.PreferenceStore.
func (m *MockPreferenceStore) Theme(ctx context.Context) (string, error) {
	if m.ThemeFn != nil {
		return m.ThemeFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.theme, nil
}

// SetTheme implements service.PreferenceStore.
func (m *MockPreferenceStore) SetTheme(ctx context.Context, theme string) error {
	m.mu.Lock()
	m.theme = theme
	m.mu.Unlock()

	if m.SetThemeFn != nil {
		return m.SetThemeFn(ctx, theme)
	}
	return nil
}

// LastAccount implements service.PreferenceStore.
func (m *MockPreferenceStore) LastAccount(ctx context.Context) (string, error) {
	if m.LastAccountFn != nil {
		return m.LastAccountFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAccount, nil
}

// SetLastAccount implements service.PreferenceStore.
func (m *MockPreferenceStore) SetLastAccount(ctx context.Context, account string) error {
	m.mu.Lock()
	m.lastAccount = account
	m.mu.Unlock()

	if m.SetLastAccountFn != nil {
		return m.SetLastAccountFn(ctx, account)
	}
	return nil
}

// Close implements service.PreferenceStore.
func (m *MockPreferenceStore) Close() error {
	return nil
}

// Ensure MockPreferenceStore implements the PreferenceStore interface.
var _ service.PreferenceStore = (*MockPreferenceStore)(nil)
