package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/trijezdci/m2front/pkg/strpool"
)

// handleComparer lets cmp.Diff treat two strpool.Handle values as equal by
// rendered text, the same way astwriter and the parser tests already judge
// lexeme equality, instead of reflecting into Handle's unexported *entry.
var handleComparer = cmp.Comparer(func(a, b strpool.Handle) bool {
	return a.Null() == b.Null() && a.String() == b.String()
})

func TestEmptyIsSingleton(t *testing.T) {
	if Empty() != Empty() {
		t.Fatalf("Empty() must return the same pointer every call")
	}
}

func TestNewBranchAndAccessors(t *testing.T) {
	leaf := NewTerminal(IDENT, strpool.Handle{})
	branch := NewBranch(ASSIGN, leaf, Empty())
	if branch.Tag() != ASSIGN {
		t.Fatalf("Tag() = %v, want ASSIGN", branch.Tag())
	}
	if branch.SubnodeCount() != 2 {
		t.Fatalf("SubnodeCount() = %d, want 2", branch.SubnodeCount())
	}
	if branch.SubnodeForIndex(0) != leaf {
		t.Fatalf("SubnodeForIndex(0) did not return the original leaf")
	}
	if branch.SubnodeForIndex(1) != Empty() {
		t.Fatalf("SubnodeForIndex(1) did not return Empty")
	}
}

func TestNewBranchRejectsTerminalTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic constructing a branch with a terminal tag")
		}
	}()
	NewBranch(IDENT)
}

func TestNewTerminalRejectsBranchTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic constructing a terminal with a branch tag")
		}
	}()
	NewTerminal(ASSIGN, strpool.Handle{})
}

func TestNewListDrainsFIFOInOrder(t *testing.T) {
	pool, _ := strpool.Init(16)
	a, _ := pool.Intern("a")
	b, _ := pool.Intern("b")
	var fifo FIFO
	fifo.Append(NewTerminal(IDENT, a))
	fifo.Append(NewTerminal(IDENT, b))
	// ARGS is an arbitrary branch tag; IDENTLIST itself is a
	// terminal-list tag and would panic NewList.
	list := NewList(ARGS, &fifo)
	if list.SubnodeCount() != 2 {
		t.Fatalf("SubnodeCount() = %d, want 2", list.SubnodeCount())
	}
	if list.SubnodeForIndex(0).ValueForIndex(0).String() != "a" {
		t.Fatalf("first child lexeme = %q, want a", list.SubnodeForIndex(0).ValueForIndex(0).String())
	}
	if fifo.Len() != 0 {
		t.Fatalf("Drain must reset the FIFO, Len() = %d", fifo.Len())
	}
}

func TestNewTerminalListAndValueAccessors(t *testing.T) {
	pool, _ := strpool.Init(16)
	a, _ := pool.Intern("a")
	b, _ := pool.Intern("b")
	list := NewTerminalList(IDENTLIST, []strpool.Handle{a, b})
	if list.ValueCount() != 2 {
		t.Fatalf("ValueCount() = %d, want 2", list.ValueCount())
	}
	if list.ValueForIndex(0).String() != "a" || list.ValueForIndex(1).String() != "b" {
		t.Fatalf("unexpected values: %q, %q", list.ValueForIndex(0).String(), list.ValueForIndex(1).String())
	}
}

func TestReplaceSubnode(t *testing.T) {
	original := NewTerminal(IDENT, strpool.Handle{})
	branch := NewBranch(ASSIGN, original, Empty())
	replacement := NewTerminal(INTVAL, strpool.Handle{})
	branch.ReplaceSubnode(0, replacement)
	if branch.SubnodeForIndex(0) != replacement {
		t.Fatalf("ReplaceSubnode did not take effect")
	}
}

func TestNewBranchStructuralEquivalenceViaCmp(t *testing.T) {
	pool, _ := strpool.Init(16)
	name, _ := pool.Intern("x")

	buildAssign := func() *Node {
		return NewBranch(ASSIGN, NewTerminal(IDENT, name), NewTerminal(INTVAL, name))
	}
	a, b := buildAssign(), buildAssign()
	if diff := cmp.Diff(a, b, cmp.AllowUnexported(Node{}), handleComparer); diff != "" {
		t.Fatalf("two independently built identical trees differ (-a +b):\n%s", diff)
	}

	other, _ := pool.Intern("y")
	c := NewBranch(ASSIGN, NewTerminal(IDENT, other), NewTerminal(INTVAL, name))
	if diff := cmp.Diff(a, c, cmp.AllowUnexported(Node{}), handleComparer); diff == "" {
		t.Fatalf("trees with different lexemes should not compare equal")
	}
}

func TestReplaceSubnodeOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on out-of-range ReplaceSubnode")
		}
	}()
	branch := NewBranch(ASSIGN, Empty(), Empty())
	branch.ReplaceSubnode(5, Empty())
}
