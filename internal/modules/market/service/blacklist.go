package service

import "sync"

// Blacklist: in-memory список адресов, которые не торгуем.
type Blacklist struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

func NewBlacklist(addrs []string) *Blacklist {
	b := &Blacklist{set: make(map[string]struct{}, len(addrs))}
	for _, a := range addrs {
		b.set[a] = struct{}{}
	}
	return b
}

func (b *Blacklist) IsBlacklisted(address string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.set[address]
	return ok
}

func (b *Blacklist) Add(address string) {
	b.mu.Lock()
	b.set[address] = struct{}{}
	b.mu.Unlock()
}
