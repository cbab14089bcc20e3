package service

import (
	"bytes"
	"sync"

	"adboard/internal/core/domain"
)

// AccountCache is a read-through cache of raw account data. Entries are
// invalidated explicitly after every submit that touches the account, so a
// fetch following a mutation always goes back to the node. Account updates
// arriving over a subscription are pushed in through Put.
type AccountCache struct {
	mu      sync.RWMutex
	entries map[domain.Address][]byte
}

func NewAccountCache() *AccountCache {
	return &AccountCache{entries: make(map[domain.Address][]byte)}
}

func (c *AccountCache) Get(address domain.Address) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.entries[address]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

func (c *AccountCache) Put(address domain.Address, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[address] = bytes.Clone(data)
}

func (c *AccountCache) Invalidate(address domain.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, address)
}
