package algo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct {
	id string
	r  int
}

func pointKey(p point) string { return p.id }

func pointChanged(a, b point) bool { return a.r != b.r }

func TestKeyedDiff(t *testing.T) {
	tests := []struct {
		name     string
		prev     []point
		next     []point
		added    []string
		removed  []string
		retained []string
		changed  []string
	}{
		{
			name:  "from empty",
			next:  []point{{"a", 1}, {"b", 2}},
			added: []string{"a", "b"},
		},
		{
			name:    "to empty",
			prev:    []point{{"a", 1}, {"b", 2}},
			removed: []string{"a", "b"},
		},
		{
			name:     "reorder keeps identity",
			prev:     []point{{"a", 1}, {"b", 2}, {"c", 3}},
			next:     []point{{"c", 3}, {"a", 1}, {"b", 2}},
			retained: []string{"c", "a", "b"},
		},
		{
			name:     "mixed",
			prev:     []point{{"a", 1}, {"b", 2}, {"c", 3}},
			next:     []point{{"d", 4}, {"b", 5}, {"a", 1}},
			added:    []string{"d"},
			removed:  []string{"c"},
			retained: []string{"b", "a"},
			changed:  []string{"b"},
		},
		{
			name:     "duplicate keys keep first",
			prev:     []point{{"a", 1}, {"a", 9}},
			next:     []point{{"a", 1}, {"b", 2}, {"b", 7}},
			added:    []string{"b"},
			retained: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := KeyedDiff(tt.prev, tt.next, pointKey, pointChanged)
			assert.Equal(t, tt.added, ids(d.Added))
			assert.Equal(t, tt.removed, ids(d.Removed))

			var retained, changed []string
			for _, r := range d.Retained {
				assert.Equal(t, r.Prev.id, r.Next.id)
				retained = append(retained, r.Next.id)
				if r.Changed {
					changed = append(changed, r.Next.id)
				}
			}
			assert.Equal(t, tt.retained, retained)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestKeyedDiffDuplicateAddedKeepsFirstValue(t *testing.T) {
	d := KeyedDiff(nil, []point{{"b", 2}, {"b", 7}}, pointKey, nil)
	assert.Equal(t, []point{{"b", 2}}, d.Added)
}

func TestKeyedDiffNilChanged(t *testing.T) {
	d := KeyedDiff([]point{{"a", 1}}, []point{{"a", 2}}, pointKey, nil)
	assert.Len(t, d.Retained, 1)
	assert.False(t, d.Retained[0].Changed)
	assert.True(t, d.Empty())
}

func TestDiffEmpty(t *testing.T) {
	same := []point{{"a", 1}}
	assert.True(t, KeyedDiff(same, same, pointKey, pointChanged).Empty())
	assert.False(t, KeyedDiff(same, []point{{"a", 2}}, pointKey, pointChanged).Empty())
	assert.False(t, KeyedDiff(same, nil, pointKey, pointChanged).Empty())
}

func ids(ps []point) []string {
	if len(ps) == 0 {
		return nil
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.id
	}
	return out
}

// FuzzKeyedDiff checks that every next key is either added or retained and every
// prev-only key is removed, for arbitrary key lists.
func FuzzKeyedDiff(f *testing.F) {
	f.Add("a,b,c", "c,b,a")
	f.Add("", "a")
	f.Add("a,a,b", "b,b")
	f.Add("x", "")

	f.Fuzz(func(t *testing.T, prevStr, nextStr string) {
		toPoints := func(s string) []point {
			var ps []point
			for k := range strings.SplitSeq(s, ",") {
				if k != "" {
					ps = append(ps, point{id: k})
				}
			}
			return ps
		}
		prev, next := toPoints(prevStr), toPoints(nextStr)
		d := KeyedDiff(prev, next, pointKey, nil)

		inNext := map[string]bool{}
		for _, p := range next {
			inNext[p.id] = true
		}
		inPrev := map[string]bool{}
		for _, p := range prev {
			inPrev[p.id] = true
		}
		for _, p := range d.Added {
			if inPrev[p.id] {
				t.Fatalf("added %q also in prev", p.id)
			}
		}
		for _, p := range d.Removed {
			if inNext[p.id] {
				t.Fatalf("removed %q also in next", p.id)
			}
		}
		if len(d.Added)+len(d.Retained) != len(inNext) {
			t.Fatalf("added+retained = %d, distinct next = %d", len(d.Added)+len(d.Retained), len(inNext))
		}
	})
}

func BenchmarkKeyedDiff(b *testing.B) {
	prev := make([]point, 1000)
	next := make([]point, 1000)
	for i := range prev {
		prev[i] = point{id: string(rune('a'+i%26)) + strings.Repeat("x", i/26), r: i}
		next[i] = point{id: prev[(i+500)%1000].id, r: i}
	}

	for b.Loop() {
		KeyedDiff(prev, next, pointKey, pointChanged)
	}
}
