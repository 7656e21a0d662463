package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestManagerGenerateAndRotate(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()
	userID := uuid.New()

	token, err := manager.Generate(ctx, userID, "access-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, _, err := manager.Rotate(ctx, userID, "access-123", "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}
	if _, _, err := manager.Rotate(ctx, uuid.New(), "access-123", token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected other user's rotation to fail, got %v", err)
	}

	newAccessID, newToken, err := manager.Rotate(ctx, userID, "access-123", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, exists := store.data[store.AccessSessionKey("access-123")]; exists {
		t.Fatal("old session left behind")
	}
	ok, err := manager.HasSession(ctx, newAccessID)
	if err != nil || !ok {
		t.Fatalf("expected new session, ok=%v err=%v", ok, err)
	}

	if _, _, err := manager.Rotate(ctx, userID, newAccessID, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("old refresh token must not rotate again, got %v", err)
	}
	if newToken == token {
		t.Fatal("expected a new refresh token")
	}
}

func TestManagerRevoke(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	if _, err := manager.Generate(ctx, uuid.New(), "access-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := manager.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err := manager.HasSession(ctx, "access-1")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatal("expected revoked session to be gone")
	}
	if _, _, err := manager.Rotate(ctx, uuid.New(), "access-1", "anything"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected missing session to map to invalid token, got %v", err)
	}
}

func TestManagerRejectsEmptyAccessID(t *testing.T) {
	manager, _ := newTestManager()
	if _, err := manager.Generate(context.Background(), uuid.New(), " "); err == nil {
		t.Fatal("expected error for empty access id")
	}
	if _, err := manager.HasSession(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty access id")
	}
}
