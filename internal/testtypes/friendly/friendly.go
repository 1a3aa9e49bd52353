// Package friendly shares its name with pkg/friendly and declares types named
// like types of that package's tests.
package friendly

type Pair[A comparable, B any] struct {
	First  A
	Second map[A]B
}

type Thing struct{}
