// Package cache provides a bounded reply cache so repeated utterances do
// not re-invoke the reply-generation chain within a short window.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// keyPrefixLen bounds cache keys to the leading runes of the normalized
// utterance. Lossy and collision-prone on purpose: near-identical
// utterances share a reply.
const keyPrefixLen = 48

type entry struct {
	key       string
	value     string
	createdAt time.Time
	ttl       time.Duration
}

// Cache is a capacity-bounded key/value store with lazy TTL expiry and
// least-recently-used eviction.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[string]*list.Element
	now      func() time.Time
}

// New creates a cache holding at most capacity entries
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 100
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Key normalizes an utterance into its cache key: lowercased, whitespace
// collapsed, truncated to a fixed prefix.
func Key(utterance string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(utterance)), " ")
	runes := []rune(norm)
	if len(runes) > keyPrefixLen {
		runes = runes[:keyPrefixLen]
	}
	return string(runes)
}

// Get returns the cached value for key if present and not expired.
// Expired entries are evicted on read.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	e := el.Value.(*entry)
	if c.now().Sub(e.createdAt) >= e.ttl {
		c.remove(el)
		return "", false
	}
	c.order.MoveToFront(el)
	return e.value, true
}

// Set inserts or overwrites the value for key. When the table exceeds
// capacity the least-recently-used entry is evicted.
func (c *Cache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.createdAt = c.now()
		e.ttl = ttl
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&entry{
		key:       key,
		value:     value,
		createdAt: c.now(),
		ttl:       ttl,
	})
	c.items[key] = el

	if c.order.Len() > c.capacity {
		c.remove(c.order.Back())
	}
}

// Len returns the number of live entries, expired ones included until read
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) remove(el *list.Element) {
	if el == nil {
		return
	}
	e := el.Value.(*entry)
	delete(c.items, e.key)
	c.order.Remove(el)
}
