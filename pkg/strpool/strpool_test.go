package strpool

import "testing"

func TestInternSharesHandle(t *testing.T) {
	p, status := Init(8)
	if status != StatusOK {
		t.Fatalf("Init: status=%v", status)
	}
	a, status := p.Intern("module")
	if status != StatusOK {
		t.Fatalf("Intern: status=%v", status)
	}
	b, status := p.Intern("module")
	if status != StatusOK {
		t.Fatalf("Intern: status=%v", status)
	}
	if !Equal(a, b) {
		t.Fatalf("expected interned handles for equal strings to be equal")
	}
	c, _ := p.Intern("other")
	if Equal(a, c) {
		t.Fatalf("expected interned handles for distinct strings to differ")
	}
}

func TestReleaseFreesOnZero(t *testing.T) {
	p, _ := Init(8)
	a, _ := p.Intern("Id")
	if p.Count() != 1 {
		t.Fatalf("Count = %d, want 1", p.Count())
	}
	p.Release(a)
	if p.Count() != 0 {
		t.Fatalf("Count = %d, want 0 after release", p.Count())
	}
}

func TestRetainKeepsAliveAcrossOneRelease(t *testing.T) {
	p, _ := Init(8)
	a, _ := p.Intern("Id")
	p.Retain(a)
	p.Release(a)
	if p.Count() != 1 {
		t.Fatalf("Count = %d, want 1 (still retained once)", p.Count())
	}
	p.Release(a)
	if p.Count() != 0 {
		t.Fatalf("Count = %d, want 0", p.Count())
	}
}

func TestInternConcat(t *testing.T) {
	p, _ := Init(8)
	a, _ := p.InternConcat([]byte("fo"), []byte("o"))
	b, _ := p.Intern("foo")
	if !Equal(a, b) {
		t.Fatalf("InternConcat(fo, o) should equal Intern(foo)")
	}
}

func TestInternNilInput(t *testing.T) {
	p, _ := Init(8)
	if _, status := p.InternSlice(nil); status != StatusNilInput {
		t.Fatalf("status = %v, want StatusNilInput", status)
	}
}

func TestNullHandle(t *testing.T) {
	var h Handle
	if !h.Null() {
		t.Fatalf("zero Handle should be Null")
	}
	if h.String() != "" {
		t.Fatalf("zero Handle should stringify to empty string")
	}
}

func TestInitRejectsNonPositiveBucketCount(t *testing.T) {
	if _, status := Init(0); status != StatusAllocationFailed {
		t.Fatalf("status = %v, want StatusAllocationFailed", status)
	}
}
