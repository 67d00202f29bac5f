package redislock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-automation/internal/application/automation"
	"github.com/jhoicas/stock-automation/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var _ automation.KeyedLocker = (*Locker)(nil)

const (
	keyPrefix          = "stock-automation:lock:"
	defaultTTL         = 10 * time.Second
	defaultRetryPeriod = 25 * time.Millisecond
)

// releaseScript borra la clave sólo si sigue siendo nuestra.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker KeyedLocker distribuido: SET NX PX con un token por adquisición.
// El TTL acota cuánto sobrevive un lock si el proceso muere con él tomado.
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
	log    zerolog.Logger
}

// NewLocker construye el locker. ttl <= 0 usa 10s.
func NewLocker(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Locker{client: client, ttl: ttl, retry: defaultRetryPeriod, log: log}
}

// Lock reintenta hasta obtener la clave o hasta que ctx termine.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: %s: %v", domain.ErrLockTimeout, key, ctxErr)
			}
			return nil, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return l.unlockFunc(redisKey, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrLockTimeout, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Locker) unlockFunc(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() { l.release(redisKey, token) })
	}
}

func (l *Locker) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		l.log.Warn().Err(err).Str("key", redisKey).Msg("no se pudo liberar el lock; expirará por TTL")
	}
}
