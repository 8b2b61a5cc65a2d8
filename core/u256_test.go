package core

import "testing"

func TestU256ArithmeticTraps(t *testing.T) {
	max, _ := ParseU256("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	one := NewU256(1)
	if _, err := max.Add(one); err == nil {
		t.Fatal("expected overflow error on Add")
	}
	zero := ZeroU256()
	if _, err := zero.Sub(one); err == nil {
		t.Fatal("expected underflow error on Sub")
	}
	if _, err := one.Div(zero); err == nil {
		t.Fatal("expected division by zero error")
	}
	if _, err := one.Mod(zero); err == nil {
		t.Fatal("expected modulo by zero error")
	}
}

func TestU256JSONRoundTrip(t *testing.T) {
	v := NewU256(123456789)
	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var out U256
	if err := out.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !out.Equal(v) {
		t.Fatalf("round trip mismatch: got %s want %s", out, v)
	}
}

func TestU256Compare(t *testing.T) {
	a := NewU256(5)
	b := NewU256(10)
	if !a.LessThan(b) {
		t.Fatal("5 should be less than 10")
	}
	if !b.GreaterThan(a) {
		t.Fatal("10 should be greater than 5")
	}
	if !a.Equal(NewU256(5)) {
		t.Fatal("5 should equal 5")
	}
}
