package apptest

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/communet/internal/application"
)

type cacheItem struct {
	value   string
	expires time.Time
}

// Cache is an application.Cache kept in a map. Now can be replaced to move
// the clock forward.
type Cache struct {
	mu    sync.Mutex
	items map[string]cacheItem
	Now   func() time.Time
}

func NewCache() *Cache {
	return &Cache{items: make(map[string]cacheItem), Now: time.Now}
}

func (c *Cache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := cacheItem{value: value}
	if ttl > 0 {
		item.expires = c.Now().Add(ttl)
	}
	c.items[key] = item
	return nil
}

func (c *Cache) lookup(key string) (cacheItem, bool) {
	item, ok := c.items[key]
	if !ok {
		return cacheItem{}, false
	}
	if !item.expires.IsZero() && !c.Now().Before(item.expires) {
		delete(c.items, key)
		return cacheItem{}, false
	}
	return item, true
}

func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.lookup(key)
	return item.value, ok, nil
}

func (c *Cache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lookup(key)
	delete(c.items, key)
	return ok, nil
}

func (c *Cache) Pop(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.lookup(key)
	delete(c.items, key)
	return item.value, ok, nil
}

// TTL returns the remaining lifetime of key, or zero when it is absent.
func (c *Cache) TTL(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.lookup(key)
	if !ok || item.expires.IsZero() {
		return 0
	}
	return item.expires.Sub(c.Now())
}

// Publisher records published events. When Err is set Publish fails after
// recording.
type Publisher struct {
	mu     sync.Mutex
	Events []any
	Err    error
}

func (p *Publisher) Publish(_ context.Context, events ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, events...)
	return p.Err
}

func (p *Publisher) Recorded() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.Events...)
}

// Storage keeps uploaded objects in memory.
type Storage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	BaseURL string
}

func (s *Storage) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Objects == nil {
		s.Objects = make(map[string][]byte)
	}
	s.Objects[objectPath] = buf.Bytes()
	return s.BaseURL + "/" + objectPath, nil
}

// Index is an application.ChannelIndex doing substring matches.
type Index struct {
	mu   sync.Mutex
	Docs map[string]application.ChannelDocument
}

func (i *Index) Index(_ context.Context, doc application.ChannelDocument) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Docs == nil {
		i.Docs = make(map[string]application.ChannelDocument)
	}
	i.Docs[doc.ID] = doc
	return nil
}

func (i *Index) Remove(_ context.Context, channelID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.Docs, channelID)
	return nil
}

func (i *Index) Search(_ context.Context, q string, size int) ([]application.ChannelDocument, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var out []application.ChannelDocument
	for _, d := range i.Docs {
		if len(out) == size {
			break
		}
		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(q)) {
			out = append(out, d)
		}
	}
	return out, nil
}
