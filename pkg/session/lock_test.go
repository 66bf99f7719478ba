package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/hsn/pkg/domain"
	"github.com/aretw0/hsn/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, s *domain.Session) error { return nil }
func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (m *MockStore) Delete(ctx context.Context, sessionID string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

type recordingLocker struct {
	keys     []string
	ttl      time.Duration
	released int
	fail     error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	l.keys = append(l.keys, key)
	l.ttl = ttl
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, domain.NewSession(sid))
		_ = mgr.Delete(ctx, sid)
	}

	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	mgr := NewManager(&MockStore{}, WithLocker(locker), WithLockTTL(5*time.Second))
	ctx := context.Background()

	_, err := mgr.Update(ctx, "abc", func(*domain.Session) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, []string{"abc"}, locker.keys)
	assert.Equal(t, 5*time.Second, locker.ttl)
	assert.Equal(t, 1, locker.released)
}

func TestManager_DistributedLockerFailure(t *testing.T) {
	locker := &recordingLocker{fail: errors.New("redis down")}
	mgr := NewManager(&MockStore{}, WithLocker(locker))

	called := false
	err := mgr.WithLock(context.Background(), "abc", func(context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
	assert.Empty(t, mgr.locks)
}
