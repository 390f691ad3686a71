package containers

import "golang.org/x/exp/constraints"

/**
 * @brief A queue whose elements stay sorted by a caller-supplied key while
 * preserving insertion order between equal keys. Backs the frame plan: pass
 * events are the keys, registration order breaks ties.
 */
type OrderedQueue[K constraints.Ordered, V any] struct {
	keys   []K
	values []V
}

func NewOrderedQueue[K constraints.Ordered, V any]() *OrderedQueue[K, V] {
	return &OrderedQueue[K, V]{}
}

// Enqueue inserts value after every element whose key is <= key.
func (q *OrderedQueue[K, V]) Enqueue(key K, value V) {
	idx := len(q.keys)
	for i, k := range q.keys {
		if k > key {
			idx = i
			break
		}
	}
	q.keys = append(q.keys, key)
	q.values = append(q.values, value)
	copy(q.keys[idx+1:], q.keys[idx:])
	copy(q.values[idx+1:], q.values[idx:])
	q.keys[idx] = key
	q.values[idx] = value
}

// Values returns the queued values in order. The returned slice is the
// queue's own backing; callers must not mutate it.
func (q *OrderedQueue[K, V]) Values() []V {
	return q.values
}

func (q *OrderedQueue[K, V]) Len() int {
	return len(q.keys)
}

func (q *OrderedQueue[K, V]) Clear() {
	q.keys = q.keys[:0]
	q.values = q.values[:0]
}
