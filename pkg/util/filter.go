package util

// InPlaceFilter keeps the elements of s matching p, reusing its backing array
func InPlaceFilter[T any](s *[]T, p func(T) bool) {
	i := 0
	for _, e := range *s {
		if p(e) {
			(*s)[i] = e
			i++
		}
	}
	*s = (*s)[:i]
}

// SymmetricDifference returns the keys present in exactly one of a and b
func SymmetricDifference[K comparable](a map[K]struct{}, b map[K]struct{}) map[K]struct{} {
	difference := map[K]struct{}{}

	for k := range a {
		if _, ok := b[k]; !ok {
			difference[k] = struct{}{}
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			difference[k] = struct{}{}
		}
	}

	return difference
}
