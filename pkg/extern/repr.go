// Package extern is the runtime support used by code generated with externgen.
//
// A proxy generated for an interface description stores the implementation value
// inside a Repr, an opaque block of exactly two machine words. Both halves of the
// linkage contract (the proxy package and the implementation package) agree on the
// layout of Repr and nothing else.
//
// The first word of a Repr is a pointer and the second is a plain integer, so the
// garbage collector never sees integer data in a pointer slot. A value whose only
// pointer is its first word is stored in place, a pointer free value of at most
// one word is stored in the second word, and any other value that fits is copied
// to the heap and referenced from the first word.
package extern

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// Repr is the fixed two machine word block used to pass implementation values
// across a package boundary.
type Repr struct {
	ptr  unsafe.Pointer
	bits uintptr
}

// ImportPath is the import path generated code refers to this package by
const ImportPath = "github.com/toyz/externgen/pkg/extern"

const (
	// WordSize is the size of one machine word on the target.
	WordSize = unsafe.Sizeof(uintptr(0))

	// ReprSize is the storage budget of an implementation type.
	ReprSize = unsafe.Sizeof(Repr{})
)

// storage is where a type lives inside a Repr
type storage uint8

const (
	storeInline storage = iota // at offset 0; only the first word holds a pointer
	storeBits                  // in the second word; no pointers, at most one word
	storeHeap                  // in a heap copy referenced by the first word
)

func (s storage) String() string {
	switch s {
	case storeInline:
		return "inline"
	case storeBits:
		return "bits"
	}
	return "heap"
}

var storages sync.Map // reflect.Type -> storage

// storageOf classifies t, which must fit in a Repr
func storageOf(t reflect.Type) storage {
	if s, ok := storages.Load(t); ok {
		return s.(storage)
	}

	var mask uint
	pointerWords(t, 0, &mask)

	s := storeHeap
	switch {
	case mask == 0 && t.Size() <= WordSize:
		s = storeBits
	case mask == 1:
		s = storeInline
	}
	storages.Store(t, s)
	return s
}

// pointerWords sets bit i of mask for every word i of t, placed at off, that the
// garbage collector scans as a pointer.
func pointerWords(t reflect.Type, off uintptr, mask *uint) {
	word := off / WordSize
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan, reflect.Func,
		reflect.String, reflect.Slice:
		*mask |= 1 << word
	case reflect.Interface:
		*mask |= 3 << word
	case reflect.Array:
		elem := t.Elem()
		for i := 0; i < t.Len(); i++ {
			pointerWords(elem, off+uintptr(i)*elem.Size(), mask)
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			pointerWords(f.Type, off+f.Offset, mask)
		}
	}
}

// typedCopy copies one value of type t from src to dst with write barriers
func typedCopy(t reflect.Type, dst, src unsafe.Pointer) {
	reflect.NewAt(t, dst).Elem().Set(reflect.NewAt(t, src).Elem())
}

// Fits reports whether values of T can be stored in a Repr.
func Fits[T any]() bool {
	var zero T
	return unsafe.Sizeof(zero) <= ReprSize && unsafe.Alignof(zero) <= unsafe.Alignof(Repr{})
}

// IntoRepr moves v into a new block. The caller must not use v afterwards.
func IntoRepr[T any](v T) Repr {
	t := mustFit[T]()
	var r Repr
	switch storageOf(t) {
	case storeInline:
		typedCopy(t, unsafe.Pointer(&r), unsafe.Pointer(&v))
	case storeBits:
		typedCopy(t, unsafe.Pointer(&r.bits), unsafe.Pointer(&v))
	default:
		heap := new(T)
		*heap = v
		r.ptr = unsafe.Pointer(heap)
	}
	return r
}

// FromRepr reconstructs the value stored in r. Ownership moves to the returned
// value; the block must not be destroyed separately. The zero Repr yields the
// zero value of T.
func FromRepr[T any](r Repr) T {
	t := mustFit[T]()
	var v T
	switch storageOf(t) {
	case storeInline:
		typedCopy(t, unsafe.Pointer(&v), unsafe.Pointer(&r))
	case storeBits:
		typedCopy(t, unsafe.Pointer(&v), unsafe.Pointer(&r.bits))
	default:
		if r.ptr != nil {
			v = *(*T)(r.ptr)
		}
	}
	return v
}

// As returns a pointer to the value of type T stored in r. Writes through the
// pointer change the stored value.
func As[T any](r *Repr) *T {
	t := mustFit[T]()
	switch storageOf(t) {
	case storeInline:
		return (*T)(unsafe.Pointer(r))
	case storeBits:
		return (*T)(unsafe.Pointer(&r.bits))
	}
	if r.ptr == nil {
		r.ptr = unsafe.Pointer(new(T))
	}
	return (*T)(r.ptr)
}

// ReprOf returns the candidate block whose stored T is v. It panics when v is
// stored in none of them, since a borrowed Self cannot outlive its block.
func ReprOf[T any](v *T, candidates ...*Repr) *Repr {
	for _, r := range candidates {
		if r != nil && As[T](r) == v {
			return r
		}
	}
	panic(fmt.Sprintf("extern: returned *%s does not point into a borrowed block", reflect.TypeFor[T]()))
}

func mustFit[T any]() reflect.Type {
	t := reflect.TypeFor[T]()
	if !Fits[T]() {
		panic(fmt.Sprintf("extern: %s (%d bytes) is too large for Repr (%d bytes)",
			t, t.Size(), ReprSize))
	}
	return t
}
