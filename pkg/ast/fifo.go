package ast

import "github.com/trijezdci/m2front/pkg/strpool"

// segmentSize is the chunk size for FIFO's backing segments. Appending
// within a segment is O(1) with no reallocation; only Drain pays for a
// single flattening copy. Sized for the tens-of-thousands-of-entries
// identifier and statement lists spec §2 calls out as the FIFO builder's
// reason to exist, rather than a plain growing slice.
const segmentSize = 256

type segment struct {
	items [segmentSize]*Node
	n     int
	next  *segment
}

// FIFO accumulates a node list across possibly many parser calls, then
// seals into an AST list node via NewList. A zero FIFO is ready to use.
type FIFO struct {
	head, tail *segment
	count      int
}

// Append adds n to the end of the queue.
func (f *FIFO) Append(n *Node) {
	if f.tail == nil || f.tail.n == segmentSize {
		seg := &segment{}
		if f.tail == nil {
			f.head = seg
		} else {
			f.tail.next = seg
		}
		f.tail = seg
	}
	f.tail.items[f.tail.n] = n
	f.tail.n++
	f.count++
}

// Len returns the number of items appended so far.
func (f *FIFO) Len() int { return f.count }

// Drain flattens the queue into a single slice in insertion order and
// resets the FIFO to empty. Safe to call on a FIFO that received no
// Append calls: it returns an empty, non-nil slice.
func (f *FIFO) Drain() []*Node {
	out := make([]*Node, 0, f.count)
	for seg := f.head; seg != nil; seg = seg.next {
		out = append(out, seg.items[:seg.n]...)
	}
	f.head, f.tail, f.count = nil, nil, 0
	return out
}

// ValueFIFO is FIFO's counterpart for terminal-value lists (IDENTLIST,
// OPTIONS): it accumulates interned handles instead of subnodes.
type ValueFIFO struct {
	values []strpool.Handle
}

// Append adds h to the end of the queue.
func (f *ValueFIFO) Append(h strpool.Handle) {
	f.values = append(f.values, h)
}

// Len returns the number of values appended so far.
func (f *ValueFIFO) Len() int { return len(f.values) }

// Contains reports whether h was already appended, using strpool's
// pointer-identity equality. Used by identList construction to detect
// duplicates (spec §8 scenario 6) without a separate set structure.
func (f *ValueFIFO) Contains(h strpool.Handle) bool {
	for _, v := range f.values {
		if strpool.Equal(v, h) {
			return true
		}
	}
	return false
}

// Drain returns the accumulated values in insertion order and resets the
// queue to empty.
func (f *ValueFIFO) Drain() []strpool.Handle {
	out := f.values
	f.values = nil
	return out
}
