// Package lock implements the ephemeral, per-seat advisory lock that
// absorbs contention before the durable version-guarded write. Losing a
// lock entry early (eviction, restart) is safe: the seat row's version
// column still rejects conflicting writes. The lock layer therefore
// never has to be correct, only fast.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeatLocker is the advisory lock taken while a seat transition is being
// attempted. Acquire reports false when another passenger currently
// owns the lock; an error means the lock store itself failed, which
// callers must treat as "not acquired" (fail closed).
type SeatLocker interface {
	// Acquire takes the lock for the passenger, or re-enters a lock the
	// same passenger already owns.
	Acquire(ctx context.Context, flightID, seatNumber, passengerID string, ttl time.Duration) (bool, error)
	// Release drops the lock if the passenger owns it. Returns false
	// when the lock was absent or owned by someone else.
	Release(ctx context.Context, flightID, seatNumber, passengerID string) (bool, error)
	// IsHeldBy reports whether the passenger currently owns the lock.
	// Acquire already re-enters an owned lock, so callers on the write
	// path never need this; it serves read-side ownership checks.
	IsHeldBy(ctx context.Context, flightID, seatNumber, passengerID string) (bool, error)
	// ForceRelease drops the lock regardless of owner. Used by the
	// session expiry sweep when cleaning up abandoned sessions.
	ForceRelease(ctx context.Context, flightID, seatNumber string) error
}

func lockKey(flightID, seatNumber string) string {
	return fmt.Sprintf("seat:lock:%s:%s", flightID, seatNumber)
}

// RedisSeatLock implements SeatLocker on a shared Redis instance so the
// lock is honored across all API replicas. The stored value is the
// owning passenger's id, which makes Acquire re-entrant per passenger
// and lets Release verify ownership atomically.
type RedisSeatLock struct {
	client *redis.Client
}

// NewRedisSeatLock constructs a RedisSeatLock. The client must be non-nil.
func NewRedisSeatLock(client *redis.Client) *RedisSeatLock {
	return &RedisSeatLock{client: client}
}

// acquireScript sets the lock if absent, or refreshes the TTL when the
// same passenger already owns it.
const acquireScript = `
	if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) then
		return 1
	end
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		redis.call("PEXPIRE", KEYS[1], ARGV[2])
		return 1
	end
	return 0
`

// releaseScript deletes the lock only when the caller owns it.
const releaseScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`

func (l *RedisSeatLock) Acquire(ctx context.Context, flightID, seatNumber, passengerID string, ttl time.Duration) (bool, error) {
	res, err := l.client.Eval(ctx, acquireScript, []string{lockKey(flightID, seatNumber)}, passengerID, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("seat lock acquire: %w", err)
	}
	return res == 1, nil
}

func (l *RedisSeatLock) Release(ctx context.Context, flightID, seatNumber, passengerID string) (bool, error) {
	res, err := l.client.Eval(ctx, releaseScript, []string{lockKey(flightID, seatNumber)}, passengerID).Int()
	if err != nil {
		return false, fmt.Errorf("seat lock release: %w", err)
	}
	return res == 1, nil
}

func (l *RedisSeatLock) IsHeldBy(ctx context.Context, flightID, seatNumber, passengerID string) (bool, error) {
	owner, err := l.client.Get(ctx, lockKey(flightID, seatNumber)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seat lock owner check: %w", err)
	}
	return owner == passengerID, nil
}

func (l *RedisSeatLock) ForceRelease(ctx context.Context, flightID, seatNumber string) error {
	if err := l.client.Del(ctx, lockKey(flightID, seatNumber)).Err(); err != nil {
		return fmt.Errorf("seat lock force release: %w", err)
	}
	return nil
}

// MemorySeatLock is a process-local SeatLocker used in tests and as the
// fallback when Redis is not configured. It provides mutual exclusion
// only within a single instance; the version guard on the seat row
// remains the cross-instance safety net.
type MemorySeatLock struct {
	mu    sync.Mutex
	locks map[string]memoryLockEntry
	now   func() time.Time
}

type memoryLockEntry struct {
	owner     string
	expiresAt time.Time
}

// NewMemorySeatLock constructs an empty MemorySeatLock.
func NewMemorySeatLock() *MemorySeatLock {
	return &MemorySeatLock{
		locks: make(map[string]memoryLockEntry),
		now:   time.Now,
	}
}

func (l *MemorySeatLock) Acquire(_ context.Context, flightID, seatNumber, passengerID string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockKey(flightID, seatNumber)
	now := l.now()
	if e, ok := l.locks[key]; ok && now.Before(e.expiresAt) && e.owner != passengerID {
		return false, nil
	}
	l.locks[key] = memoryLockEntry{owner: passengerID, expiresAt: now.Add(ttl)}
	return true, nil
}

func (l *MemorySeatLock) Release(_ context.Context, flightID, seatNumber, passengerID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lockKey(flightID, seatNumber)
	e, ok := l.locks[key]
	if !ok || e.owner != passengerID || l.now().After(e.expiresAt) {
		return false, nil
	}
	delete(l.locks, key)
	return true, nil
}

func (l *MemorySeatLock) IsHeldBy(_ context.Context, flightID, seatNumber, passengerID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[lockKey(flightID, seatNumber)]
	if !ok || l.now().After(e.expiresAt) {
		return false, nil
	}
	return e.owner == passengerID, nil
}

func (l *MemorySeatLock) ForceRelease(_ context.Context, flightID, seatNumber string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, lockKey(flightID, seatNumber))
	return nil
}
