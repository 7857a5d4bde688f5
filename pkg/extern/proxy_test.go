package extern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterImpl and counterProxy mirror the shape of generated code, with package
// variables standing in for the linknamed symbols.
type counterImpl struct {
	value int
}

// values seen by the counter destructor, in order
var counterDrops []int

var (
	counterNew = func(v int) Repr {
		return IntoRepr(counterImpl{value: v})
	}
	counterGet = func(this *Repr) int {
		return As[counterImpl](this).value
	}
	counterDrop = func(this *Repr) {
		impl := As[counterImpl](this)
		counterDrops = append(counterDrops, impl.value)
		*impl = *new(counterImpl)
	}
)

type counterProxy struct {
	box Box
}

func newCounterProxy(v int) counterProxy {
	return counterProxy{box: Own(counterNew(v))}
}

func (p *counterProxy) Get() int { return counterGet(p.box.Ref()) }

func (p *counterProxy) Drop() {
	if !p.box.Owned() {
		return
	}
	counterDrop(p.box.Ref())
	p.box.Release()
}

func TestDestructorExactlyOnce(t *testing.T) {
	t.Run("drop twice", func(t *testing.T) {
		counterDrops = nil
		p := newCounterProxy(42)
		assert.Equal(t, 42, p.Get())

		p.Drop()
		p.Drop()
		assert.Equal(t, []int{42}, counterDrops)
	})

	t.Run("zero value", func(t *testing.T) {
		counterDrops = nil
		p := newCounterProxy(0)
		require.Equal(t, Repr{}, *p.box.Ref())

		p.Drop()
		p.Drop()
		assert.Equal(t, []int{0}, counterDrops)
	})

	t.Run("moved out then dropped", func(t *testing.T) {
		counterDrops = nil
		p := newCounterProxy(7)

		moved := FromRepr[counterImpl](p.box.Take())
		p.Drop()

		assert.Empty(t, counterDrops)
		assert.Equal(t, 7, moved.value)
	})

	t.Run("use after drop", func(t *testing.T) {
		counterDrops = nil
		p := newCounterProxy(3)
		p.Drop()

		assert.Panics(t, func() { p.Get() })
		assert.Equal(t, []int{3}, counterDrops)
	})
}
