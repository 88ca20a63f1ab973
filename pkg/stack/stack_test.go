package stack_test

import (
	"testing"

	"cellar/pkg/stack"
)

func TestPushPop(t *testing.T) {
	s := stack.New(1, 2)
	s.Push(3)

	if s.Size() != 3 {
		t.Fatalf("expected size 3, got %d", s.Size())
	}

	for _, expected := range []int{3, 2, 1} {
		top, ok := s.Peek()
		if !ok || top != expected {
			t.Errorf("Peek: expected %d, got %d (%v)", expected, top, ok)
		}
		got, ok := s.Pop()
		if !ok || got != expected {
			t.Errorf("Pop: expected %d, got %d (%v)", expected, got, ok)
		}
	}

	if _, ok := s.Pop(); ok {
		t.Errorf("expected Pop on empty stack to fail")
	}
	if _, ok := s.Peek(); ok {
		t.Errorf("expected Peek on empty stack to fail")
	}
}

func TestClear(t *testing.T) {
	s := stack.New("a", "b", "c")
	s.Clear()
	if s.Size() != 0 || len(s.Array()) != 0 {
		t.Errorf("expected empty stack after Clear, got %v", s.Array())
	}
	s.Push("d")
	if got := s.Array(); len(got) != 1 || got[0] != "d" {
		t.Errorf("unexpected contents %v", got)
	}
}
