package intern_test

import (
	"testing"
	"unsafe"

	"cellar/pkg/intern"
)

func TestIntern(t *testing.T) {
	p := intern.New()
	a := p.Intern(string([]byte("counter")))
	b := p.Intern(string([]byte("counter")))

	if unsafe.StringData(a) != unsafe.StringData(b) {
		t.Errorf("expected both names to share storage")
	}
	p.Intern("other")
	if p.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", p.Len())
	}
}
