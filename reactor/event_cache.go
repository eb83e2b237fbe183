// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package reactor

import (
	"sync"
	"unsafe"

	"trpc.group/trpc-go/evcore/internal/locker"
)

const eventBlockSize = 4 * 1024

func init() {
	defaultEventCache = &eventCache{
		cache: make([]*Event, 0, 1024),
	}
}

var defaultEventCache *eventCache

// eventCache is a block-allocating free list for Event, avoiding a
// malloc per registration on the hot path. Allocation takes a
// spinlock (fast, non-blocking expected); deallocation only appends
// to a deferred free list under a regular mutex and is reclaimed in
// batches by reclaim, matching the allocation/reclaim split the teacher
// uses for its own per-fd descriptor cache.
type eventCache struct {
	first *Event
	cache []*Event
	lock  locker.Locker

	mu       sync.Mutex
	freeList []int32
}

func alloc() *Event {
	return defaultEventCache.alloc()
}

func (ec *eventCache) alloc() *Event {
	ec.lock.Lock()
	if ec.first == nil {
		const evSize = unsafe.Sizeof(Event{})
		n := eventBlockSize / evSize
		if n == 0 {
			n = 1
		}
		slot := int32(len(ec.cache))
		for i := uintptr(0); i < n; i++ {
			ev := &Event{slot: slot}
			ec.cache = append(ec.cache, ev)
			ev.next = ec.first
			ec.first = ev
			slot++
		}
	}
	ev := ec.first
	ec.first = ev.next
	ec.lock.Unlock()
	ev.Reset()
	return ev
}

func markFree(ev *Event) {
	defaultEventCache.markFree(ev)
}

func (ec *eventCache) markFree(ev *Event) {
	ec.mu.Lock()
	ec.freeList = append(ec.freeList, ev.slot)
	ec.mu.Unlock()
}

// reclaim returns every Event marked free since the last reclaim to
// the fast free list, so future alloc calls can reuse them. It is
// meant to be called periodically from the reactor's idle path, the
// same way the teacher reclaims descriptors outside the hot loop.
func reclaim() {
	defaultEventCache.reclaim()
}

func (ec *eventCache) reclaim() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if len(ec.freeList) == 0 {
		return
	}

	ec.lock.Lock()
	for _, i := range ec.freeList {
		ev := ec.cache[i]
		ev.Reset()
		ev.next = ec.first
		ec.first = ev
	}
	ec.freeList = ec.freeList[:0]
	ec.lock.Unlock()
}
