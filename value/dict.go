package value

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"
)

// Dict is a mapping from string keys to Value that preserves insertion
// order on iteration, backed by a swiss-table hash map for O(1) average
// lookup/insert. swiss.Map itself has no defined iteration order, so Dict
// pairs it with an explicit key-order slice that is appended to on first
// insert and left untouched on update.
type Dict struct {
	m     *swiss.Map[string, Value]
	order []string
}

// NewDict returns an empty Dict with initial capacity for at least size
// entries.
func NewDict(size int) *Dict {
	if size < 1 {
		size = 1
	}
	return &Dict{m: swiss.NewMap[string, Value](uint32(size))}
}

func (*Dict) Type() string { return "dict" }

func (d *Dict) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range d.order {
		if i > 0 {
			sb.WriteString(", ")
		}
		v, _, _ := d.Get(k)
		fmt.Fprintf(&sb, "%s: %s", k, v)
	}
	sb.WriteByte('}')
	return sb.String()
}

// Get returns the value stored at key, and whether it was present.
func (d *Dict) Get(key string) (Value, bool, error) {
	v, ok := d.m.Get(key)
	return v, ok, nil
}

// Set stores v at key, appending key to the insertion order on first use.
func (d *Dict) Set(key string, v Value) {
	if _, existed := d.m.Get(key); !existed {
		d.order = append(d.order, key)
	}
	d.m.Put(key, v)
}

// Len returns the number of entries.
func (d *Dict) Len() int { return d.m.Count() }

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by the caller.
func (d *Dict) Keys() []string { return d.order }
