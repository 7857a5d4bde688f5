package extern

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Self stands for the implementing type inside an interface description.
type Self struct{ _ [0]func() }

// Ref marks a read-only borrow of Self.
type Ref[T any] *T

// ConstPtr marks a raw pointer to Self that is not written through.
type ConstPtr[T any] unsafe.Pointer

// MutPtr marks a raw pointer to Self that may be written through.
type MutPtr[T any] unsafe.Pointer

// Send certifies that a value may be moved to another goroutine.
type Send interface{ ExternSend() }

// Sync certifies that a value may be shared between goroutines.
type Sync interface{ ExternSync() }

// Copy certifies that a value may be duplicated bitwise and owns no resources.
// Proxies of Copy interfaces have no destructor.
type Copy interface{ ExternCopy() }

// Unpin certifies that a value may be relocated in memory.
type Unpin interface{ ExternUnpin() }

// Sized is accepted for completeness; every Go type satisfies it.
type Sized interface{}

// Clone forwards duplication of the implementation value.
type Clone interface{ Clone() Self }

// Default forwards construction of a default implementation value.
type Default interface{ Default() Self }

// Debug forwards fmt.Stringer.
type Debug interface{ String() string }

// AsRef forwards a read-only conversion to T.
type AsRef[T any] interface{ AsRef() T }

// AsMut forwards a mutable conversion to *T.
type AsMut[T any] interface{ AsMut() *T }

// TypeID identifies an implementation type across the linkage boundary.
type TypeID = reflect.Type

// TypeOf returns the TypeID of T.
func TypeOf[T any]() TypeID {
	return reflect.TypeFor[T]()
}

// CheckImpl panics unless T is the implementation type identified by want.
func CheckImpl[T any](want TypeID, iface string) {
	if got := TypeOf[T](); got != want {
		panic(fmt.Sprintf("extern: `%s` is not an implementation type for extern interface `%s`", got, iface))
	}
}
