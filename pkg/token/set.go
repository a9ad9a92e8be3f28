package token

// wordBits is the width of one storage word in a Set.
const wordBits = 64

// setWords is the number of uint64 words needed to cover the whole Kind
// enumeration.
var setWords = (int(numKinds) + wordBits - 1) / wordBits

// Set is a dense, fixed-capacity bitset over Kind, used to represent
// FIRST, FOLLOW, and RESYNC sets (spec §4.4). The zero Set is empty and
// ready to use.
type Set struct {
	words []uint64
}

// NewSet builds a Set containing exactly the given kinds.
func NewSet(kinds ...Kind) Set {
	var s Set
	for _, k := range kinds {
		s.Add(k)
	}
	return s
}

func (s *Set) ensure() {
	if s.words == nil {
		s.words = make([]uint64, setWords)
	}
}

// Add inserts k into s.
func (s *Set) Add(k Kind) {
	s.ensure()
	s.words[int(k)/wordBits] |= 1 << uint(int(k)%wordBits)
}

// Contains reports whether k is a member of s.
func (s Set) Contains(k Kind) bool {
	if s.words == nil {
		return false
	}
	return s.words[int(k)/wordBits]&(1<<uint(int(k)%wordBits)) != 0
}

// Union returns a new Set containing every member of s and every member
// of other.
func (s Set) Union(other Set) Set {
	var out Set
	out.ensure()
	for i := range out.words {
		var a, b uint64
		if i < len(s.words) {
			a = s.words[i]
		}
		if i < len(other.words) {
			b = other.words[i]
		}
		out.words[i] = a | b
	}
	return out
}

// With returns a copy of s with the given kinds added, leaving s itself
// unmodified. Useful for building a RESYNC set from a FOLLOW set plus a
// few extra synchronising tokens.
func (s Set) With(kinds ...Kind) Set {
	out := s.Union(Set{})
	out.ensure()
	for _, k := range kinds {
		out.Add(k)
	}
	return out
}

// Empty reports whether s has no members.
func (s Set) Empty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}
