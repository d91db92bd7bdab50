package grid

import "sync"

// Pool recycles Arrays of a single resolution so that history eviction does
// not churn ~40 MB buffers at 1024x1024.
type Pool struct {
	pool          sync.Pool
	width, height int
}

func NewPool(w, h int) *Pool {
	return &Pool{
		width:  w,
		height: h,
		pool: sync.Pool{
			New: func() interface{} {
				return NewArrays(w, h)
			},
		},
	}
}

// Get returns arrays of the pool's size. Contents are unspecified; callers
// overwrite them with CopyTo.
func (p *Pool) Get() *Arrays {
	return p.pool.Get().(*Arrays)
}

// Put hands a back for reuse. Arrays of another size are dropped.
func (p *Pool) Put(a *Arrays) {
	if a != nil && a.Width == p.width && a.Height == p.height {
		p.pool.Put(a)
	}
}

// GetCopy returns pooled arrays holding a copy of g.
func (p *Pool) GetCopy(g *Grid) *Arrays {
	a := p.Get()
	g.CopyTo(a)
	return a
}
