package workflow

import (
	"strconv"
	"sync"
)

// IndexCache amortizes adjacency-index construction across navigations of the
// same definition. Entries are keyed by definition identity (id + updated-at)
// and never mutated after first build, so readers share them lock-free once
// retrieved.
type IndexCache struct {
	mu      sync.RWMutex
	entries map[string]*navIndex
}

func NewIndexCache() *IndexCache {
	return &IndexCache{entries: make(map[string]*navIndex)}
}

func definitionKey(def *WorkflowData) string {
	return def.ID.Hex() + ":" + strconv.FormatInt(def.UpdatedAt.UnixNano(), 10)
}

// NavigatorFor builds (or reuses) the index for a definition and binds a
// navigator to the given current stage.
func (c *IndexCache) NavigatorFor(def *WorkflowData, currentStage string) (*Navigator, error) {
	key := definitionKey(def)

	c.mu.RLock()
	idx, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		built, err := buildIndex(def)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if existing, raced := c.entries[key]; raced {
			built = existing
		} else {
			c.entries[key] = built
		}
		idx = built
		c.mu.Unlock()
	}

	return newNavigatorWithIndex(def, idx, currentStage)
}
