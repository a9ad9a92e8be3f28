// Package strpool implements a process-wide interning pool for the byte
// strings that flow through the lexer and parser: lexemes, identifiers,
// and source lines. Interned strings are reference counted so that an AST
// node's leaf values stay alive exactly as long as something still
// references them.
package strpool

import (
	"errors"
	"hash/fnv"
)

// Status reports the outcome of a pool operation.
type Status int

const (
	StatusOK Status = iota
	StatusAlreadyInitialized
	StatusAllocationFailed
	StatusNilInput
)

// Sentinel errors matching StatusAlreadyInitialized and StatusNilInput.
// Init and Intern report a Status and do not return these.
var (
	ErrAlreadyInitialized = errors.New("strpool: already initialized")
	ErrNilInput            = errors.New("strpool: nil input")
)

type entry struct {
	bytes []byte
	hash  uint64
	refs  int
	next  *entry
}

// Handle is a shared reference to an interned byte string. The zero Handle
// denotes the empty/absent string (Null returns true).
type Handle struct {
	e *entry
}

// Null reports whether h carries no backing string.
func (h Handle) Null() bool { return h.e == nil }

// Bytes returns the interned byte sequence, or nil for a null handle.
func (h Handle) Bytes() []byte {
	if h.e == nil {
		return nil
	}
	return h.e.bytes
}

// String returns the interned string, or "" for a null handle.
func (h Handle) String() string {
	if h.e == nil {
		return ""
	}
	return string(h.e.bytes)
}

// Equal reports whether a and b are handles to the same interned entry.
// Because Pool.Intern always returns a shared handle for equal byte
// sequences, pointer identity is sufficient and is the pool's defining
// invariant.
func Equal(a, b Handle) bool { return a.e == b.e }

// Len returns the length of the interned string in bytes.
func (h Handle) Len() int {
	if h.e == nil {
		return 0
	}
	return len(h.e.bytes)
}

// Pool is a closed-chaining hash table of interned byte strings.
// A Pool is not safe for concurrent use; the front end this package
// serves is single-threaded throughout (see spec §5).
type Pool struct {
	buckets []*entry
	count   int
	status  Status
}

// Init allocates a fresh pool with the given number of hash buckets.
// bucketCount must be positive and is used as the table size as given
// (e.g. 1024).
func Init(bucketCount int) (*Pool, Status) {
	if bucketCount <= 0 {
		return nil, StatusAllocationFailed
	}
	return &Pool{buckets: make([]*entry, bucketCount)}, StatusOK
}

func rollingHash(b []byte) uint64 {
	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}

func (p *Pool) bucketFor(hash uint64) int {
	return int(hash % uint64(len(p.buckets)))
}

// Intern returns a retained handle for s, reusing an existing entry when
// one with equal contents already exists in the pool.
func (p *Pool) Intern(s string) (Handle, Status) {
	return p.InternSlice([]byte(s))
}

// InternSlice is like Intern but takes a byte slice directly, avoiding a
// string conversion in the lexer's hot path. The slice is copied; callers
// may reuse or discard it after the call returns.
func (p *Pool) InternSlice(b []byte) (Handle, Status) {
	if b == nil {
		return Handle{}, StatusNilInput
	}
	hash := rollingHash(b)
	idx := p.bucketFor(hash)
	for e := p.buckets[idx]; e != nil; e = e.next {
		if e.hash == hash && string(e.bytes) == string(b) {
			e.refs++
			return Handle{e: e}, StatusOK
		}
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	e := &entry{bytes: cp, hash: hash, refs: 1, next: p.buckets[idx]}
	p.buckets[idx] = e
	p.count++
	return Handle{e: e}, StatusOK
}

// InternConcat interns the concatenation of a and b without requiring the
// caller to allocate the joined slice first.
func (p *Pool) InternConcat(a, b []byte) (Handle, Status) {
	if a == nil || b == nil {
		return Handle{}, StatusNilInput
	}
	joined := make([]byte, 0, len(a)+len(b))
	joined = append(joined, a...)
	joined = append(joined, b...)
	return p.InternSlice(joined)
}

// Retain increments h's reference count and returns h unchanged.
func (p *Pool) Retain(h Handle) Handle {
	if h.e != nil {
		h.e.refs++
	}
	return h
}

// Release decrements h's reference count, unlinking and freeing the
// backing entry once the count reaches zero.
func (p *Pool) Release(h Handle) {
	if h.e == nil {
		return
	}
	h.e.refs--
	if h.e.refs > 0 {
		return
	}
	idx := p.bucketFor(h.e.hash)
	prev := (*entry)(nil)
	for e := p.buckets[idx]; e != nil; e = e.next {
		if e == h.e {
			if prev == nil {
				p.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			p.count--
			return
		}
		prev = e
	}
}

// Count returns the number of distinct interned strings currently live.
func (p *Pool) Count() int { return p.count }
