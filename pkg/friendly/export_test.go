package friendly

type Pair[X any] struct {
	value X
}

type Thing struct{}
