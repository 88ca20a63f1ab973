// Package intern deduplicates identifier strings so that every symbol name
// is stored once for the lifetime of the process.
package intern

// Pool is a deduplicating string store.
type Pool struct {
	m map[string]string
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{m: make(map[string]string)}
}

// Intern returns the canonical copy of s.
func (p *Pool) Intern(s string) string {
	if c, ok := p.m[s]; ok {
		return c
	}
	p.m[s] = s
	return s
}

// Len returns the number of distinct strings held.
func (p *Pool) Len() int {
	return len(p.m)
}
