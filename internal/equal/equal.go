// Package equal implements the identity comparisons used for bailouts and deps.
package equal

import (
	"math"
	"reflect"
)

// SameValue reports whether a and b are the same value.
//
// Comparable values compare with ==, except that NaN equals NaN and +0 differs
// from -0. Pointers, maps and channels compare by identity, slices by backing
// array and length. Functions are never the same value.
//
// Empty slices may share the runtime's zero-size allocation, so two
// separately made empty slices can be the same value. A nil slice never
// matches an empty one.
func SameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Float32, reflect.Float64:
		fa, fb := va.Float(), vb.Float()
		if math.IsNaN(fa) && math.IsNaN(fb) {
			return true
		}
		return fa == fb && math.Signbit(fa) == math.Signbit(fb)
	case reflect.Func:
		return false
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if !va.Comparable() {
		return false
	}
	return a == b
}

// Shallow compares two string keyed maps entry by entry with SameValue.
func Shallow[M ~map[string]any](a, b M) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !SameValue(va, vb) {
			return false
		}
	}
	return true
}

// Deps compares two hook dependency lists. A nil list never matches.
func Deps(next, prev []any) bool {
	if next == nil || prev == nil {
		return false
	}
	if len(next) != len(prev) {
		return false
	}
	for i := range next {
		if !SameValue(next[i], prev[i]) {
			return false
		}
	}
	return true
}
