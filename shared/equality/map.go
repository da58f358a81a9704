package equality

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Map is a keyed container whose notion of key sameness is fixed at
// construction by a Kind. Entries are write-once: storing a key that is
// already present leaves the existing entry untouched, so the container only
// ever grows.
//
// Map performs no internal synchronization. Concurrent writers racing on the
// same unseen key is a caller-side hazard; callers needing atomicity must
// serialize externally.
type Map[V any] struct {
	store keyedStore[V]
}

// NewMap returns a container for the given equality kind.
// Returns ErrUnsupportedKind for a Kind outside Identity, Value, Deep.
func NewMap[V any](kind Kind) (*Map[V], error) {
	switch kind {
	case Identity:
		return &Map[V]{store: identityStore[V]{entries: map[any]V{}}}, nil
	case Value:
		return &Map[V]{store: valueStore[V]{entries: map[any]V{}}}, nil
	case Deep:
		return &Map[V]{store: &deepStore[V]{buckets: map[uint64][]deepEntry[V]{}}}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKind, kind)
	}
}

// Load reports whether key has been stored under the map's equality kind,
// returning the stored value when present.
func (m *Map[V]) Load(key any) (V, bool) {
	return m.store.load(key)
}

// Store records key → val unless key is already present.
func (m *Map[V]) Store(key any, val V) {
	if _, ok := m.store.load(key); ok {
		return
	}
	m.store.insert(key, val)
}

// Len returns the number of distinct keys stored so far.
func (m *Map[V]) Len() int {
	return m.store.size()
}

// keyedStore is a sealed interface: only the predefined per-kind stores
// implement it.
type keyedStore[V any] interface {
	load(key any) (V, bool)
	insert(key any, val V)
	size() int
}

// --- value equality ---

type valueStore[V any] struct {
	entries map[any]V
}

func (s valueStore[V]) load(key any) (V, bool) {
	v, ok := s.entries[key]
	return v, ok
}

func (s valueStore[V]) insert(key any, val V) {
	s.entries[key] = val
}

func (s valueStore[V]) size() int { return len(s.entries) }

// --- reference identity ---

type identityStore[V any] struct {
	entries map[any]V
}

func (s identityStore[V]) load(key any) (V, bool) {
	v, ok := s.entries[identityKey(key)]
	return v, ok
}

func (s identityStore[V]) insert(key any, val V) {
	s.entries[identityKey(key)] = val
}

func (s identityStore[V]) size() int { return len(s.entries) }

// refIdent keys reference kinds by type and referent address, so two
// referents of different types at the same address never collide.
type refIdent struct {
	typ reflect.Type
	ptr uintptr
	len int
}

func identityKey(key any) any {
	rv := reflect.ValueOf(key)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return refIdent{typ: rv.Type(), ptr: rv.Pointer()}
	case reflect.Slice:
		// a slice denotes its backing array segment, not just its head
		return refIdent{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}
	default:
		return key
	}
}

// --- deep (structural) equality ---

type deepEntry[V any] struct {
	key any
	val V
}

type deepStore[V any] struct {
	buckets map[uint64][]deepEntry[V]
	count   int
}

func (s *deepStore[V]) load(key any) (V, bool) {
	for _, e := range s.buckets[deepHash(key)] {
		if reflect.DeepEqual(e.key, key) {
			return e.val, true
		}
	}
	var zero V
	return zero, false
}

func (s *deepStore[V]) insert(key any, val V) {
	h := deepHash(key)
	s.buckets[h] = append(s.buckets[h], deepEntry[V]{key: key, val: val})
	s.count++
}

func (s *deepStore[V]) size() int { return s.count }

// deepHash buckets keys so that any two keys reflect.DeepEqual considers
// equal land in the same bucket; collisions are resolved by the in-bucket
// DeepEqual scan.
func deepHash(key any) uint64 {
	d := xxhash.New()
	writeCanonical(d, reflect.ValueOf(key), 0)
	return d.Sum64()
}

const maxHashDepth = 32

// writeCanonical feeds d a rendering that is identical for DeepEqual
// values: pointers and interfaces are followed to their referents, map
// entries combine independent of iteration order, and nil-ness is
// distinguished from emptiness. Beyond maxHashDepth (very deep or cyclic
// keys) it degrades to a shared marker; such keys still resolve correctly
// through the bucket scan.
func writeCanonical(d *xxhash.Digest, v reflect.Value, depth int) {
	if !v.IsValid() {
		_, _ = d.WriteString("<nil>")
		return
	}
	if depth > maxHashDepth {
		_, _ = d.WriteString("<deep>")
		return
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			_, _ = fmt.Fprintf(d, "%s(nil)", v.Type())
			return
		}
		writeCanonical(d, v.Elem(), depth+1)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			_, _ = fmt.Fprintf(d, "%s(nil)", v.Type())
			return
		}
		_, _ = fmt.Fprintf(d, "%s[%d]{", v.Type(), v.Len())
		for i := 0; i < v.Len(); i++ {
			writeCanonical(d, v.Index(i), depth+1)
			_, _ = d.WriteString(",")
		}
		_, _ = d.WriteString("}")
	case reflect.Map:
		if v.IsNil() {
			_, _ = fmt.Fprintf(d, "%s(nil)", v.Type())
			return
		}
		var combined uint64
		iter := v.MapRange()
		for iter.Next() {
			entry := xxhash.New()
			writeCanonical(entry, iter.Key(), depth+1)
			_, _ = entry.WriteString("=>")
			writeCanonical(entry, iter.Value(), depth+1)
			combined ^= entry.Sum64()
		}
		_, _ = fmt.Fprintf(d, "%s[%d]{%x}", v.Type(), v.Len(), combined)
	case reflect.Struct:
		_, _ = fmt.Fprintf(d, "%s{", v.Type())
		for i := 0; i < v.NumField(); i++ {
			writeCanonical(d, v.Field(i), depth+1)
			_, _ = d.WriteString(",")
		}
		_, _ = d.WriteString("}")
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		// DeepEqual never equates non-nil funcs, and chans compare by ==
		_, _ = fmt.Fprintf(d, "%s(%x)", v.Type(), v.Pointer())
	default:
		_, _ = fmt.Fprintf(d, "%s:%v", v.Type(), v)
	}
}
