package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/mockup-tools-mcp/internal/model"
)

// ErrUnknownHandle is returned for handles that were never issued or have
// been forgotten.
var ErrUnknownHandle = errors.New("unknown model handle")

// maxModels bounds the model cache. The oldest model is dropped first.
const maxModels = 64

type cachedModel struct {
	model   *model.ComponentModel
	origin  string
	created time.Time
}

// modelCache keeps recognized models under random handles. It is safe for
// concurrent use.
type modelCache struct {
	mu     sync.RWMutex
	models map[string]cachedModel
	order  []string
}

func newModelCache() *modelCache {
	return &modelCache{models: make(map[string]cachedModel)}
}

// put stores m and returns its new handle.
func (c *modelCache) put(m *model.ComponentModel, origin string) string {
	h := uuid.NewString()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[h] = cachedModel{model: m, origin: origin, created: time.Now()}
	c.order = append(c.order, h)
	for len(c.order) > maxModels {
		delete(c.models, c.order[0])
		c.order = c.order[1:]
	}
	return h
}

func (c *modelCache) get(handle string) (cachedModel, error) {
	if _, err := uuid.Parse(handle); err != nil {
		return cachedModel{}, fmt.Errorf("%w: %q", ErrUnknownHandle, handle)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.models[handle]
	if !ok {
		return cachedModel{}, fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}
	return m, nil
}

// forget drops a handle and reports whether it existed.
func (c *modelCache) forget(handle string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.models[handle]; !ok {
		return false
	}
	delete(c.models, handle)
	for i, h := range c.order {
		if h == handle {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *modelCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}
