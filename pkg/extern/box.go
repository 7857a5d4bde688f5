package extern

// Box is the storage of a generated proxy: a Repr and whether the proxy still
// owns the value in it. Ownership is tracked apart from the bytes of the value,
// so an implementation whose value is all zeros is still destroyed.
type Box struct {
	repr  Repr
	owned bool
}

// Own returns a box owning the value in r.
func Own(r Repr) Box {
	return Box{repr: r, owned: true}
}

// Owned reports whether the box holds a value that has been neither moved out
// nor destroyed.
func (b *Box) Owned() bool {
	return b.owned
}

// Ref borrows the owned block. It panics when the box owns nothing.
func (b *Box) Ref() *Repr {
	if !b.owned {
		panic("extern: use of a proxy whose value was moved out or destroyed")
	}
	return &b.repr
}

// Take moves the value out and leaves the box empty. It panics when the box
// owns nothing.
func (b *Box) Take() Repr {
	r := *b.Ref()
	*b = Box{}
	return r
}

// Release forgets the value without destroying it.
func (b *Box) Release() {
	*b = Box{}
}
