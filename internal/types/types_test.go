package types

import "testing"

func TestEqualsComparesArrayBoundsAndElementKind(t *testing.T) {
	a := NewArray(Integer, 1, 5)
	b := NewArray(Integer, 1, 5)
	c := NewArray(Integer, 0, 5)
	d := NewArray(Float, 1, 5)

	if !a.Equals(b) {
		t.Fatal("expected two arrays with identical bounds/element to be equal")
	}
	if a.Equals(c) {
		t.Fatal("expected arrays with different lower bounds to differ")
	}
	if a.Equals(d) {
		t.Fatal("expected arrays with different element kinds to differ")
	}
}

func TestEqualsIgnoresBoundsForNonArrayKinds(t *testing.T) {
	if !TInteger.Equals(TInteger) {
		t.Fatal("expected TInteger to equal itself")
	}
	if TInteger.Equals(TFloat) {
		t.Fatal("expected TInteger and TFloat to differ")
	}
	if !(Type{Kind: Integer, Lower: 1, Upper: 5}).Equals(TInteger) {
		t.Fatal("expected bounds on a non-array type to be ignored")
	}
}

func TestNewArrayCountIsUpperMinusLowerNotInclusive(t *testing.T) {
	a := NewArray(Integer, 1, 5)
	if a.Count != 4 {
		t.Fatalf("expected Count=4 (5-1), got %d", a.Count)
	}
}

func TestIsNumericAcceptsOnlyIntegerAndFloat(t *testing.T) {
	for _, want := range []struct {
		t  Type
		ok bool
	}{
		{TInteger, true},
		{TFloat, true},
		{TBool, false},
		{TChar, false},
		{TString, false},
	} {
		if got := want.t.IsNumeric(); got != want.ok {
			t.Errorf("%s.IsNumeric() = %v, want %v", want.t, got, want.ok)
		}
	}
}

func TestCanCoerceAllowsIntegerFloatAndIntegerBoolBothWays(t *testing.T) {
	cases := []struct {
		from, to Type
		want     bool
	}{
		{TInteger, TFloat, true},
		{TFloat, TInteger, true},
		{TInteger, TBool, true},
		{TBool, TInteger, true},
		{TInteger, TInteger, true},
		{TString, TInteger, false},
		{TChar, TString, false},
		{TBool, TFloat, false},
	}
	for _, c := range cases {
		if got := CanCoerce(c.from, c.to); got != c.want {
			t.Errorf("CanCoerce(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCanCoerceArraysRequiresMatchingElementKindAndCount(t *testing.T) {
	a := NewArray(Integer, 1, 5)
	sameShape := NewArray(Integer, 10, 14)
	shorter := NewArray(Integer, 1, 3)
	wrongElem := NewArray(Float, 1, 5)

	if !CanCoerce(a, sameShape) {
		t.Fatal("expected arrays with the same element kind and count (different bounds) to coerce")
	}
	if CanCoerce(a, shorter) {
		t.Fatal("expected arrays of different lengths not to coerce")
	}
	if CanCoerce(a, wrongElem) {
		t.Fatal("expected arrays of different element kinds not to coerce")
	}
}

func TestCoercionErrorMessageNamesBothTypes(t *testing.T) {
	err := &CoercionError{From: TString, To: TInteger}
	want := "cannot coerce string to integer"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestArrayStringIncludesBoundsAndElementKind(t *testing.T) {
	a := NewArray(Character, 0, 10)
	want := "array[0:10] of char"
	if a.String() != want {
		t.Fatalf("got %q, want %q", a.String(), want)
	}
}
