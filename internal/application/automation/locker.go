package automation

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/stock-automation/internal/domain"
)

// KeyedLocker serializa secciones críticas por clave (la clave de deduplicación de alertas).
// Lock bloquea hasta obtener el lock o hasta que ctx termine; la función devuelta lo libera.
type KeyedLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// MutexLocker implementación en proceso: un mapa de locks por clave con conteo de referencias.
type MutexLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewMutexLocker construye el locker en memoria.
func NewMutexLocker() *MutexLocker {
	return &MutexLocker{locks: make(map[string]*keyLock)}
}

// Lock adquiere el lock de key respetando la cancelación de ctx.
func (l *MutexLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrLockTimeout, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *MutexLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// size número de claves con lock vivo (tests).
func (l *MutexLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
