// Package rendercache decides whether a mesh is drawn by walking its faces,
// by walking them while recording a compiled command list, or by replaying
// a list recorded earlier.
package rendercache

import "fmt"

// Kind is the state of a Cache.
type Kind int

const (
	Uncached       Kind = iota // Every draw traverses the mesh
	PendingCompile             // The next draw records a list
	Cached                     // Draws replay the list
	Disabled                   // Every draw traverses; caching refused
)

// String returns the state name.
func (k Kind) String() string {
	switch k {
	case Uncached:
		return "uncached"
	case PendingCompile:
		return "pending"
	case Cached:
		return "cached"
	case Disabled:
		return "disabled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Compiler is the backend side of command list recording.
type Compiler interface {
	GenList() uint32
	BeginCompile(id uint32)
	EndCompile()
	CallList(id uint32)
	DeleteList(id uint32)
}

// Cache is the per-mesh cache state. The zero value is Uncached.
type Cache struct {
	kind Kind
	id   uint32
}

// Kind returns the current state.
func (c *Cache) Kind() Kind {
	return c.kind
}

// ID returns the list id, or 0 when no list is reserved.
func (c *Cache) ID() uint32 {
	return c.id
}

// Create reserves a list so the next Draw records it. It does nothing
// unless the cache is Uncached.
func (c *Cache) Create(comp Compiler) {
	if c.kind != Uncached {
		return
	}
	c.id = comp.GenList()
	c.kind = PendingCompile
}

// Draw renders through the cache. traverse submits the mesh to the backend
// and is not called when a recorded list is replayed.
func (c *Cache) Draw(comp Compiler, traverse func()) {
	switch c.kind {
	case Cached:
		comp.CallList(c.id)
	case PendingCompile:
		comp.BeginCompile(c.id)
		traverse()
		comp.EndCompile()
		c.kind = Cached
	default:
		traverse()
	}
}

// Disable drops any list and refuses caching until the mesh is reloaded.
func (c *Cache) Disable(comp Compiler) {
	c.release(comp)
	c.kind = Disabled
}

// Invalidate drops any list so later draws traverse again. A Disabled
// cache stays Disabled.
func (c *Cache) Invalidate(comp Compiler) {
	c.release(comp)
	if c.kind != Disabled {
		c.kind = Uncached
	}
}

func (c *Cache) release(comp Compiler) {
	if c.id != 0 {
		comp.DeleteList(c.id)
		c.id = 0
	}
}
