package view

import "github.com/launix-de/shipyard/storage"

// Pair2 through Pair4 are the held results of a composed tuple view, in
// declaration order.
type Pair2[A, B any] struct {
	A A
	B B
}

type Pair3[A, B, C any] struct {
	A A
	B B
	C C
}

type Pair4[A, B, C, D any] struct {
	A A
	B B
	C C
	D D
}

type tuple2[A, B any] struct {
	a Acquirer[A]
	b Acquirer[B]
}

// Tuple2 composes two view acquirers into one: descriptors concatenate in
// order, TryBorrow acquires a then b, releasing a again if b fails
// (all-or-nothing, per spec.md §4.3).
func Tuple2[A, B any](a Acquirer[A], b Acquirer[B]) Acquirer[Pair2[A, B]] {
	return tuple2[A, B]{a: a, b: b}
}

func (t tuple2[A, B]) Descriptors() []Descriptor {
	return append(append([]Descriptor{}, t.a.Descriptors()...), t.b.Descriptors()...)
}

func (t tuple2[A, B]) TryBorrow(all *storage.AllStorages) (Pair2[A, B], func(), error) {
	var zero Pair2[A, B]
	va, relA, err := t.a.TryBorrow(all)
	if err != nil {
		return zero, nil, err
	}
	vb, relB, err := t.b.TryBorrow(all)
	if err != nil {
		relA()
		return zero, nil, err
	}
	return Pair2[A, B]{A: va, B: vb}, func() { relB(); relA() }, nil
}

type tuple3[A, B, C any] struct {
	a Acquirer[A]
	b Acquirer[B]
	c Acquirer[C]
}

// Tuple3 composes three view acquirers, same all-or-nothing semantics as Tuple2.
func Tuple3[A, B, C any](a Acquirer[A], b Acquirer[B], c Acquirer[C]) Acquirer[Pair3[A, B, C]] {
	return tuple3[A, B, C]{a: a, b: b, c: c}
}

func (t tuple3[A, B, C]) Descriptors() []Descriptor {
	d := append([]Descriptor{}, t.a.Descriptors()...)
	d = append(d, t.b.Descriptors()...)
	return append(d, t.c.Descriptors()...)
}

func (t tuple3[A, B, C]) TryBorrow(all *storage.AllStorages) (Pair3[A, B, C], func(), error) {
	var zero Pair3[A, B, C]
	va, relA, err := t.a.TryBorrow(all)
	if err != nil {
		return zero, nil, err
	}
	vb, relB, err := t.b.TryBorrow(all)
	if err != nil {
		relA()
		return zero, nil, err
	}
	vc, relC, err := t.c.TryBorrow(all)
	if err != nil {
		relB()
		relA()
		return zero, nil, err
	}
	return Pair3[A, B, C]{A: va, B: vb, C: vc}, func() { relC(); relB(); relA() }, nil
}

type tuple4[A, B, C, D any] struct {
	a Acquirer[A]
	b Acquirer[B]
	c Acquirer[C]
	d Acquirer[D]
}

// Tuple4 composes four view acquirers, same all-or-nothing semantics as Tuple2.
func Tuple4[A, B, C, D any](a Acquirer[A], b Acquirer[B], c Acquirer[C], d Acquirer[D]) Acquirer[Pair4[A, B, C, D]] {
	return tuple4[A, B, C, D]{a: a, b: b, c: c, d: d}
}

func (t tuple4[A, B, C, D]) Descriptors() []Descriptor {
	out := append([]Descriptor{}, t.a.Descriptors()...)
	out = append(out, t.b.Descriptors()...)
	out = append(out, t.c.Descriptors()...)
	return append(out, t.d.Descriptors()...)
}

func (t tuple4[A, B, C, D]) TryBorrow(all *storage.AllStorages) (Pair4[A, B, C, D], func(), error) {
	var zero Pair4[A, B, C, D]
	va, relA, err := t.a.TryBorrow(all)
	if err != nil {
		return zero, nil, err
	}
	vb, relB, err := t.b.TryBorrow(all)
	if err != nil {
		relA()
		return zero, nil, err
	}
	vc, relC, err := t.c.TryBorrow(all)
	if err != nil {
		relB()
		relA()
		return zero, nil, err
	}
	vd, relD, err := t.d.TryBorrow(all)
	if err != nil {
		relC()
		relB()
		relA()
		return zero, nil, err
	}
	return Pair4[A, B, C, D]{A: va, B: vb, C: vc, D: vd}, func() { relD(); relC(); relB(); relA() }, nil
}
