package equal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameValue(t *testing.T) {
	t.Run("comparable values", func(t *testing.T) {
		assert.True(t, SameValue(1, 1))
		assert.True(t, SameValue("a", "a"))
		assert.True(t, SameValue(nil, nil))
		assert.False(t, SameValue(1, 2))
		assert.False(t, SameValue(1, int64(1)))
		assert.False(t, SameValue(nil, 0))
	})

	t.Run("floats", func(t *testing.T) {
		assert.True(t, SameValue(math.NaN(), math.NaN()))
		assert.False(t, SameValue(0.0, math.Copysign(0, -1)))
		assert.True(t, SameValue(1.5, 1.5))
	})

	t.Run("references compare by identity", func(t *testing.T) {
		type box struct{ n int }
		a, b := &box{1}, &box{1}
		assert.True(t, SameValue(a, a))
		assert.False(t, SameValue(a, b))

		m := map[string]int{"x": 1}
		assert.True(t, SameValue(m, m))
		assert.False(t, SameValue(m, map[string]int{"x": 1}))

		s := []int{1, 2, 3}
		assert.True(t, SameValue(s, s))
		assert.False(t, SameValue(s, s[:2]))
		assert.False(t, SameValue(s, []int{1, 2, 3}))
	})

	t.Run("empty slices", func(t *testing.T) {
		empty := []int{}
		assert.True(t, SameValue(empty, empty))
		assert.True(t, SameValue([]int(nil), []int(nil)))
		assert.False(t, SameValue(empty, []int(nil)))
	})

	t.Run("functions never match", func(t *testing.T) {
		fn := func() {}
		assert.False(t, SameValue(fn, fn))
	})

	t.Run("structs with incomparable fields", func(t *testing.T) {
		type withSlice struct{ items []int }
		assert.False(t, SameValue(withSlice{}, withSlice{}))
	})
}

func TestDeps(t *testing.T) {
	assert.True(t, Deps([]any{}, []any{}))
	assert.True(t, Deps([]any{1, "a"}, []any{1, "a"}))
	assert.False(t, Deps([]any{1}, []any{2}))
	assert.False(t, Deps([]any{1}, []any{1, 2}))
	assert.False(t, Deps(nil, nil))
	assert.False(t, Deps([]any{}, nil))
}

func TestShallow(t *testing.T) {
	shared := []int{1}
	assert.True(t, Shallow(map[string]any{"a": 1, "s": shared}, map[string]any{"a": 1, "s": shared}))
	assert.False(t, Shallow(map[string]any{"a": 1}, map[string]any{"a": 1, "b": 2}))
	assert.False(t, Shallow(map[string]any{"a": 1}, map[string]any{"b": 1}))
}
