// Package box declares generic types used by tests that decompose types
// declared outside the package under test.
package box

type Box[T any] struct {
	Value T
}

type Keyed[K comparable, V any] struct {
	Values map[K][]V
	Count  int
}
