package ir

import "testing"

func TestBitvectorMasking(t *testing.T) {
	b := NewBitvector(0xFF, 4)
	if b.Bits != 0xF {
		t.Fatalf("expected masked bits 0xF, got %#x", b.Bits)
	}
}

func TestBitvectorArith(t *testing.T) {
	a := NewBitvector(3, 4)
	b := NewBitvector(5, 4)
	if got := a.Add(b).Bits; got != 8 {
		t.Fatalf("3+5 mod 16 = %d, want 8", got)
	}
	if got := a.Sub(b).Bits; got != 14 {
		t.Fatalf("3-5 mod 16 = %d, want 14 (wraps)", got)
	}
}

func TestBitvectorDivideByZero(t *testing.T) {
	a := NewBitvector(3, 8)
	z := NewBitvector(0, 8)
	if _, ok := a.Divide(z); ok {
		t.Fatal("expected division by zero to trap")
	}
	if _, ok := a.Rem(z); ok {
		t.Fatal("expected remainder by zero to trap")
	}
}

func TestBitvectorSignExtend(t *testing.T) {
	neg := NewBitvector(0b1000, 4) // -8 in 4-bit two's complement
	ext := neg.SignExtend(8)
	if ext.Bits != 0xF8 {
		t.Fatalf("sign-extend of -8 to 8 bits = %#x, want 0xf8", ext.Bits)
	}

	pos := NewBitvector(0b0011, 4)
	ext = pos.SignExtend(8)
	if ext.Bits != 0x3 {
		t.Fatalf("sign-extend of 3 to 8 bits = %#x, want 0x3", ext.Bits)
	}
}

func TestBitvectorZeroExtend(t *testing.T) {
	b := NewBitvector(0b1111, 4)
	ext := b.ZeroExtend(8)
	if ext.Bits != 0xF {
		t.Fatalf("zero-extend of 0xF to 8 bits = %#x, want 0xf", ext.Bits)
	}
}

func TestBitvectorSlice(t *testing.T) {
	b := NewBitvector(0b10110100, 8)
	got := b.Slice(2, 4)
	want := uint64(0b1101)
	if got.Bits != want {
		t.Fatalf("slice(2,4) of %08b = %04b, want %04b", b.Bits, got.Bits, want)
	}
}

func TestValStringKinds(t *testing.T) {
	cases := []struct {
		v    Val
		want string
	}{
		{Unitv(), "()"},
		{Boolv(true), "true"},
		{I64v(-3), "-3"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestCloneStructIsIndependent(t *testing.T) {
	orig := Structv(map[Name]Val{1: I64v(1)})
	clone := orig.CloneStruct()
	clone[1] = I64v(2)
	if orig.Fields[1].I64 != 1 {
		t.Fatal("CloneStruct should not alias the original field map")
	}
}
