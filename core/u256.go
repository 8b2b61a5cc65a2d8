package core

// u256.go - unsigned 256-bit arithmetic with trapping overflow, used for
// balances, token supplies and VM numeric evaluation. Wraps
// holiman/uint256, the idiomatic fixed-width integer type for this domain,
// instead of hand-rolling one over math/big.

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
)

// U256 is an unsigned 256-bit integer with trapping arithmetic: overflow,
// underflow, division by zero and modulo by zero all fail the operation
// instead of wrapping or panicking.
type U256 struct {
	v uint256.Int
}

// ZeroU256 is the additive identity.
func ZeroU256() U256 { return U256{} }

// NewU256 wraps a uint64 literal.
func NewU256(n uint64) U256 {
	return U256{v: *uint256.NewInt(n)}
}

// ParseU256 parses a base-10 literal, as used for decimal constants in VM
// expressions and for JSON-encoded amounts on the wire.
func ParseU256(s string) (U256, error) {
	var v uint256.Int
	if err := v.SetFromDecimal(s); err != nil {
		return U256{}, fmt.Errorf("mvm: invalid u256 literal %q: %w", s, err)
	}
	return U256{v: v}, nil
}

func (u U256) String() string { return u.v.Dec() }
func (u U256) Uint64() uint64 { return u.v.Uint64() }
func (u U256) IsZero() bool   { return u.v.IsZero() }

func (u U256) Cmp(o U256) int { return u.v.Cmp(&o.v) }
func (u U256) LessThan(o U256) bool    { return u.Cmp(o) < 0 }
func (u U256) GreaterThan(o U256) bool { return u.Cmp(o) > 0 }
func (u U256) Equal(o U256) bool       { return u.Cmp(o) == 0 }

// Add returns u+o, failing ErrArithmeticError on overflow.
func (u U256) Add(o U256) (U256, error) {
	var r uint256.Int
	if _, overflow := r.AddOverflow(&u.v, &o.v); overflow {
		return U256{}, ErrArithmeticError
	}
	return U256{v: r}, nil
}

// Sub returns u-o, failing ErrArithmeticError on underflow.
func (u U256) Sub(o U256) (U256, error) {
	var r uint256.Int
	if _, overflow := r.SubOverflow(&u.v, &o.v); overflow {
		return U256{}, ErrArithmeticError
	}
	return U256{v: r}, nil
}

// Mul returns u*o, failing ErrArithmeticError on overflow.
func (u U256) Mul(o U256) (U256, error) {
	var r uint256.Int
	if _, overflow := r.MulOverflow(&u.v, &o.v); overflow {
		return U256{}, ErrArithmeticError
	}
	return U256{v: r}, nil
}

// Div returns u/o, failing ErrArithmeticError on division by zero.
func (u U256) Div(o U256) (U256, error) {
	if o.IsZero() {
		return U256{}, ErrArithmeticError
	}
	var r uint256.Int
	r.Div(&u.v, &o.v)
	return U256{v: r}, nil
}

// Mod returns u%o, failing ErrArithmeticError on modulo by zero.
func (u U256) Mod(o U256) (U256, error) {
	if o.IsZero() {
		return U256{}, ErrArithmeticError
	}
	var r uint256.Int
	r.Mod(&u.v, &o.v)
	return U256{v: r}, nil
}

func (u U256) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.v.Dec())
}

func (u *U256) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseU256(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Bytes32 returns the big-endian 32-byte representation.
func (u U256) Bytes32() [32]byte {
	return u.v.Bytes32()
}
