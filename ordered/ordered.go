// Package ordered provides a key-unique map that remembers insertion order.
package ordered

import "iter"

// Map is a key-unique map whose iteration order is the order in which keys
// were first set. The zero value is ready to use.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// New returns a Map holding the given pairs, applied in order with Set.
func New[K comparable, V any](pairs ...Pair[K, V]) *Map[K, V] {
	m := &Map[K, V]{}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}

	return m
}

// Pair is a single key/value entry used to seed a Map.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// P is shorthand for building a Pair.
func P[K comparable, V any](key K, value V) Pair[K, V] {
	return Pair[K, V]{Key: key, Value: value}
}

// Set stores value under key. An existing key keeps its original position.
func (m *Map[K, V]) Set(key K, value V) {
	if m.values == nil {
		m.values = make(map[K]V)
	}

	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}

	v, ok := m.values[key]
	return v, ok
}

func (m *Map[K, V]) Delete(key K) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}

	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}

	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	if m == nil {
		return nil
	}

	out := make([]K, len(m.keys))
	copy(out, m.keys)

	return out
}

// All iterates over the entries in insertion order. It is safe on a nil Map.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy of m.
func (m *Map[K, V]) Clone() *Map[K, V] {
	out := &Map[K, V]{}
	for k, v := range m.All() {
		out.Set(k, v)
	}

	return out
}
