// Package collection provides generic, functional-style slice helpers used
// across serialization and catalog code.
//
//	names := collection.Map(items, func(i models.OrderItem) string { return i.ProductName })
//	roots := collection.Filter(cats, func(c models.Category) bool { return c.ParentID == nil })
package collection

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns elements of s for which fn returns true.
func Filter[T any](s []T, fn func(T) bool) []T {
	var out []T
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// First returns the first element matching fn, or (zero, false).
func First[T any](s []T, fn func(T) bool) (T, bool) {
	for _, v := range s {
		if fn(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Contains reports whether any element of s satisfies fn.
func Contains[T any](s []T, fn func(T) bool) bool {
	_, ok := First(s, fn)
	return ok
}

// GroupBy partitions s into a map keyed by the value returned by fn.
func GroupBy[T any, K comparable](s []T, fn func(T) K) map[K][]T {
	out := make(map[K][]T)
	for _, v := range s {
		k := fn(v)
		out[k] = append(out[k], v)
	}
	return out
}

// Unique removes duplicates, keeping first occurrence order, keyed by fn.
func Unique[T any, K comparable](s []T, fn func(T) K) []T {
	seen := make(map[K]bool, len(s))
	var out []T
	for _, v := range s {
		k := fn(v)
		if !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	return out
}
