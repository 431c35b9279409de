package filter

// KeySet is a set of join keys.
type KeySet map[string]struct{}

// Keys collects the key of every row.
func Keys[T any](rows []T, key func(T) string) KeySet {
	set := make(KeySet, len(rows))
	for _, r := range rows {
		set[key(r)] = struct{}{}
	}
	return set
}

// Has reports whether k is in the set.
func (s KeySet) Has(k string) bool {
	_, ok := s[k]
	return ok
}

// Where returns the rows matching keep, in input order. The result is never nil.
func Where[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// SemiJoin keeps the rows of left whose key appears among the keys of right.
func SemiJoin[L, R any](left []L, leftKey func(L) string, right []R, rightKey func(R) string) []L {
	keys := Keys(right, rightKey)
	return Where(left, func(l L) bool { return keys.Has(leftKey(l)) })
}

// Index maps each key to the first row carrying it.
func Index[T any](rows []T, key func(T) string) map[string]T {
	out := make(map[string]T, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, ok := out[k]; !ok {
			out[k] = r
		}
	}
	return out
}

// Count tallies rows per key.
func Count[T any](rows []T, key func(T) string) map[string]int {
	out := make(map[string]int)
	for _, r := range rows {
		out[key(r)]++
	}
	return out
}
