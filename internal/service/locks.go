package service

import (
	"hash/fnv"
	"sync"
)

// keyedLocks serializes mutations per contact phone number so an operator
// status change cannot race the inbound-message upsert on the same contact.
// Locks are sharded so unrelated contacts never serialize on each other.
type keyedLocks struct {
	shards [64]sync.Mutex
}

func (l *keyedLocks) lock(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &l.shards[h.Sum32()%uint32(len(l.shards))]
	mu.Lock()
	return mu
}
