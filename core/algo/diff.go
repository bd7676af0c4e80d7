package algo

// Retained pairs the previous and next value of an entity present in both lists.
type Retained[T any] struct {
	Prev    T
	Next    T
	Changed bool
}

// Diff is the result of reconciling two keyed lists.
type Diff[T any] struct {
	Added    []T           // in next order
	Removed  []T           // in prev order
	Retained []Retained[T] // in next order
}

// KeyedDiff matches prev and next by key rather than by position. Duplicate keys
// keep their first occurrence. changed may be nil, in which case nothing is
// reported as changed.
func KeyedDiff[T any, K comparable](prev, next []T, key func(T) K, changed func(a, b T) bool) Diff[T] {
	prevByKey := make(map[K]T, len(prev))
	for _, p := range prev {
		k := key(p)
		if _, dup := prevByKey[k]; !dup {
			prevByKey[k] = p
		}
	}

	var d Diff[T]
	seen := make(map[K]struct{}, len(next))
	for _, n := range next {
		k := key(n)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		p, ok := prevByKey[k]
		if !ok {
			d.Added = append(d.Added, n)
			continue
		}
		r := Retained[T]{Prev: p, Next: n}
		if changed != nil {
			r.Changed = changed(p, n)
		}
		d.Retained = append(d.Retained, r)
	}

	removed := make(map[K]struct{})
	for _, p := range prev {
		k := key(p)
		if _, ok := seen[k]; ok {
			continue
		}
		if _, dup := removed[k]; dup {
			continue
		}
		removed[k] = struct{}{}
		d.Removed = append(d.Removed, p)
	}
	return d
}

// Empty reports whether the diff has no additions, removals or changes.
func (d Diff[T]) Empty() bool {
	if len(d.Added) > 0 || len(d.Removed) > 0 {
		return false
	}
	for _, r := range d.Retained {
		if r.Changed {
			return false
		}
	}
	return true
}
