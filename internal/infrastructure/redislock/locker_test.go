package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jhoicas/stock-automation/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T, ttl time.Duration) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l := NewLocker(client, ttl, zerolog.Nop())
	l.retry = 5 * time.Millisecond
	return l, mr
}

func TestLocker_ExclusionMutuaPorClave(t *testing.T) {
	l, mr := newTestLocker(t, time.Minute)

	unlock, err := l.Lock(context.Background(), "p1|LOW_STOCK")
	require.NoError(t, err)
	defer unlock()
	assert.True(t, mr.Exists(keyPrefix+"p1|LOW_STOCK"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "p1|LOW_STOCK")
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
}

func TestLocker_ClavesDistintasNoSeBloquean(t *testing.T) {
	l, _ := newTestLocker(t, time.Minute)

	unlockA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestLocker_LiberarPermiteAdquirirDeNuevo(t *testing.T) {
	l, mr := newTestLocker(t, time.Minute)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
	assert.False(t, mr.Exists(keyPrefix+"k"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	again, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	again()
}

func TestLocker_EsperaHastaQueSeLibere(t *testing.T) {
	l, _ := newTestLocker(t, time.Minute)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	time.AfterFunc(30*time.Millisecond, unlock)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	second, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	second()
}

func TestLocker_TokenVencidoNoBorraLockAjeno(t *testing.T) {
	l, mr := newTestLocker(t, time.Second)

	staleUnlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists(keyPrefix+"k"), "el lock debió expirar por TTL")

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	owner, err := mr.Get(keyPrefix + "k")
	require.NoError(t, err)

	staleUnlock()
	got, err := mr.Get(keyPrefix + "k")
	require.NoError(t, err, "el dueño actual conserva el lock")
	assert.Equal(t, owner, got)

	unlock()
	assert.False(t, mr.Exists(keyPrefix+"k"))
}

func TestLocker_UnlockEsIdempotente(t *testing.T) {
	l, mr := newTestLocker(t, time.Minute)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()

	other, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
	assert.True(t, mr.Exists(keyPrefix+"k"))
	other()
}

func TestLocker_TTLAplicadoALaClave(t *testing.T) {
	l, mr := newTestLocker(t, 3*time.Second)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()
	assert.Equal(t, 3*time.Second, mr.TTL(keyPrefix+"k"))
}
