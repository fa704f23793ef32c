package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ittullos/authgate/internal/auth"
)

type MemoryStore struct {
	data       map[string]*storeItem
	mu         sync.RWMutex
	sessionTTL time.Duration
	stopCh     chan struct{}
}

type storeItem struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryStore(sessionTTL time.Duration) *MemoryStore {
	ms := &MemoryStore{
		data:       make(map[string]*storeItem),
		sessionTTL: sessionTTL,
		stopCh:     make(chan struct{}),
	}

	go ms.cleanupExpired()

	return ms
}

func (ms *MemoryStore) PutSession(ctx context.Context, correlationID string, session auth.AuthSession, tokens auth.TokenPresence) error {
	sessionData, err := json.Marshal(session)
	if err != nil {
		return err
	}
	tokenData, err := json.Marshal(tokens)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	// Both records land under one lock so a reader never sees one without
	// the other.
	expiresAt := time.Now().Add(ms.sessionTTL)
	ms.data[sessionKey(correlationID)] = &storeItem{value: sessionData, expiresAt: expiresAt}
	ms.data[tokensKey(correlationID)] = &storeItem{value: tokenData, expiresAt: expiresAt}

	return nil
}

func (ms *MemoryStore) GetSession(ctx context.Context, correlationID string) (*auth.AuthSession, error) {
	data, ok := ms.get(sessionKey(correlationID))
	if !ok {
		return nil, nil
	}

	var session auth.AuthSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (ms *MemoryStore) GetTokenPresence(ctx context.Context, correlationID string) (*auth.TokenPresence, error) {
	data, ok := ms.get(tokensKey(correlationID))
	if !ok {
		return nil, nil
	}

	var tokens auth.TokenPresence
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

func (ms *MemoryStore) SetPendingRedirect(ctx context.Context, correlationID, path string) error {
	ms.set(redirectKey(correlationID), []byte(path), redirectTTL)
	return nil
}

func (ms *MemoryStore) TakePendingRedirect(ctx context.Context, correlationID string) (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	key := redirectKey(correlationID)
	item, ok := ms.data[key]
	if !ok || time.Now().After(item.expiresAt) {
		return "", nil
	}

	delete(ms.data, key)
	return string(item.value), nil
}

func (ms *MemoryStore) SetLoginState(ctx context.Context, state string, data []byte, ttl time.Duration) error {
	ms.set(loginKey(state), data, ttl)
	return nil
}

func (ms *MemoryStore) TakeLoginState(ctx context.Context, state string) ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	key := loginKey(state)
	item, ok := ms.data[key]
	if !ok || time.Now().After(item.expiresAt) {
		return nil, ErrNotFound
	}

	delete(ms.data, key)
	return item.value, nil
}

func (ms *MemoryStore) SetCSRFToken(ctx context.Context, token string, ttl time.Duration) error {
	ms.set(csrfKey(token), []byte("1"), ttl)
	return nil
}

func (ms *MemoryStore) TakeCSRFToken(ctx context.Context, token string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	key := csrfKey(token)
	item, ok := ms.data[key]
	if !ok || time.Now().After(item.expiresAt) {
		return false, nil
	}

	delete(ms.data, key)
	return true, nil
}

func (ms *MemoryStore) Clear(ctx context.Context, correlationID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.data, sessionKey(correlationID))
	delete(ms.data, tokensKey(correlationID))
	delete(ms.data, redirectKey(correlationID))
	return nil
}

func (ms *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (ms *MemoryStore) Close() error {
	close(ms.stopCh)
	return nil
}

func (ms *MemoryStore) get(key string) ([]byte, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, ok := ms.data[key]
	if !ok || time.Now().After(item.expiresAt) {
		return nil, false
	}

	valueCopy := make([]byte, len(item.value))
	copy(valueCopy, item.value)
	return valueCopy, true
}

func (ms *MemoryStore) set(key string, value []byte, ttl time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	ms.data[key] = &storeItem{
		value:     valueCopy,
		expiresAt: time.Now().Add(ttl),
	}
}

func (ms *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.cleanup()
		case <-ms.stopCh:
			return
		}
	}
}

func (ms *MemoryStore) cleanup() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for key, item := range ms.data {
		if now.After(item.expiresAt) {
			delete(ms.data, key)
		}
	}
}
