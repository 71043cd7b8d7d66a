package com

import (
	"errors"
	"slices"
	"sync"
)

var ErrNotFound = errors.New("not found")

// Map is a concurrent-safe map that keeps keys in the order of insertion.
type Map[K comparable, V any] struct {
	mu   sync.Mutex
	m    map[K]V
	keys []K
}

func NewMap[K comparable, V any]() *Map[K, V] { return &Map[K, V]{m: make(map[K]V)} }

func (m *Map[K, _]) Has(key K) bool { _, err := m.Find(key); return err == nil }
func (m *Map[_, _]) IsEmpty() bool  { return m.Len() == 0 }
func (m *Map[_, _]) Len() int       { m.mu.Lock(); defer m.mu.Unlock(); return len(m.m) }

// Put adds or replaces the value, a replaced key keeps its place.
func (m *Map[K, V]) Put(key K, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.m[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.m[key] = v
}

func (m *Map[K, _]) RemoveByKey(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.m[key]; !ok {
		return
	}
	delete(m.m, key)
	m.keys = slices.DeleteFunc(m.keys, func(k K) bool { return k == key })
}

// Find returns the value by the key or ErrNotFound.
// Zero keys are never found.
func (m *Map[K, V]) Find(key K) (v V, err error) {
	var zero K
	if key == zero {
		return v, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.m[key]; ok {
		return v, nil
	}
	return v, ErrNotFound
}

// ForEach calls fn for every value in the order of insertion.
// The callback must not modify the map.
func (m *Map[K, V]) ForEach(fn func(v V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		fn(m.m[k])
	}
}

// Values returns a snapshot of the values in the order of insertion.
func (m *Map[_, V]) Values() []V {
	var vv []V
	m.ForEach(func(v V) { vv = append(vv, v) })
	return vv
}
