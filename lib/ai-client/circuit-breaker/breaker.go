package circuitbreaker

import (
	"sync"
	"time"
)

// Breaker - счётчики отказов по провайдерам.
// Вся работа с состоянием сериализована мьютексом, одна запись на провайдера
type Breaker struct {
	mu        sync.Mutex
	states    map[string]*state
	threshold int           // подряд идущих отказов до открытия
	coolDown  time.Duration // пауза перед пробным запросом
	now       func() time.Time
}

type state struct {
	failures int
	open     bool
	retryAt  time.Time // момент, когда можно сделать пробный запрос
}

func New(threshold int, coolDown time.Duration) *Breaker {
	return &Breaker{
		states:    map[string]*state{},
		threshold: threshold,
		coolDown:  coolDown,
		now:       time.Now,
	}
}

// Allow сообщает, можно ли обращаться к провайдеру.
// Для открытого состояния после истечения паузы разрешается ровно один
// пробный запрос, следующий - только после новой паузы или успеха
func (b *Breaker) Allow(provider string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.states[provider]
	if !ok || !s.open {
		return true
	}
	if b.now().Before(s.retryAt) {
		return false
	}
	s.retryAt = b.now().Add(b.coolDown)
	return true
}

// OnSuccess сбрасывает счётчик отказов и закрывает breaker
func (b *Breaker) OnSuccess(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.getState(provider)
	s.failures = 0
	s.open = false
}

// OnFailure учитывает отказ, при достижении порога открывает breaker
func (b *Breaker) OnFailure(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.getState(provider)
	s.failures++
	if s.failures >= b.threshold || s.open {
		s.open = true
		s.retryAt = b.now().Add(b.coolDown)
	}
}

func (b *Breaker) IsOpen(provider string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.states[provider]
	return ok && s.open
}

func (b *Breaker) getState(provider string) *state {
	s, ok := b.states[provider]
	if !ok {
		s = &state{}
		b.states[provider] = s
	}
	return s
}
