package responsecache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	aiclientmodels "hr-interview-backend/models/api/aiclient"
)

// префикс промта, участвующий в ключе; длинные промты с одинаковым началом
// почти всегда означают одинаковый запрос
const keyPromptPrefixLen = 2000

// Cache - ограниченный по суммарному размеру кеш ответов генерации.
// Вытеснение: сначала просроченные записи, затем наименее ценные
// по связке (давность обращения, частота обращений)
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxBytes   int
	curBytes   int
	defaultTTL time.Duration
	now        func() time.Time
}

type entry struct {
	resp       aiclientmodels.GenerationResponse
	createdAt  time.Time
	ttl        time.Duration
	lastAccess time.Time
	hits       int
	size       int
}

func New(maxBytes int, defaultTTL time.Duration) *Cache {
	return &Cache{
		entries:    map[string]*entry{},
		maxBytes:   maxBytes,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Key строит ключ кеша по значимым полям запроса
func Key(req aiclientmodels.GenerationRequest) string {
	prompt := req.Prompt
	if len(prompt) > keyPromptPrefixLen {
		prompt = prompt[:keyPromptPrefixLen]
	}
	raw := fmt.Sprintf("%s|%s|%s|%.2f|%v", prompt, req.Preferred, req.SystemPrompt, req.Temperature, req.Structured)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) Get(key string) (aiclientmodels.GenerationResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return aiclientmodels.GenerationResponse{}, false
	}
	if c.expired(e) {
		c.remove(key, e)
		return aiclientmodels.GenerationResponse{}, false
	}
	e.lastAccess = c.now()
	e.hits++
	return e.resp, true
}

func (c *Cache) Put(key string, resp aiclientmodels.GenerationResponse, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	size := len(resp.Text) + len(key)
	if size > c.maxBytes {
		// ответ крупнее всего кеша, не сохраняем
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[key]; ok {
		c.remove(key, old)
	}
	for c.curBytes+size > c.maxBytes {
		if !c.evictOne() {
			return
		}
	}
	c.entries[key] = &entry{
		resp:       resp,
		createdAt:  c.now(),
		ttl:        ttl,
		lastAccess: c.now(),
		size:       size,
	}
	c.curBytes += size
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) expired(e *entry) bool {
	return c.now().After(e.createdAt.Add(e.ttl))
}

func (c *Cache) remove(key string, e *entry) {
	delete(c.entries, key)
	c.curBytes -= e.size
}

// evictOne удаляет одну запись: просроченную, если такая есть,
// иначе с наименьшим (lastAccess, hits)
func (c *Cache) evictOne() bool {
	var victimKey string
	var victim *entry
	for k, e := range c.entries {
		if c.expired(e) {
			c.remove(k, e)
			return true
		}
		if victim == nil ||
			e.lastAccess.Before(victim.lastAccess) ||
			(e.lastAccess.Equal(victim.lastAccess) && e.hits < victim.hits) {
			victimKey = k
			victim = e
		}
	}
	if victim == nil {
		return false
	}
	c.remove(victimKey, victim)
	return true
}
