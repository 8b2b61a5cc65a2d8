package core

// value.go - the tagged value union flowing through the Mosh VM: contract
// variables, mapping cells, function arguments and expression results are
// all one of {U64, U256, String, Bool, Address}.

import (
	"encoding/json"
	"fmt"
)

// VarType enumerates the declarable contract variable/mapping types.
type VarType string

const (
	TypeU64     VarType = "U64"
	TypeU256    VarType = "U256"
	TypeString  VarType = "String"
	TypeBool    VarType = "Bool"
	TypeAddress VarType = "Address"
)

func (t VarType) valid() bool {
	switch t {
	case TypeU64, TypeU256, TypeString, TypeBool, TypeAddress:
		return true
	}
	return false
}

func (t VarType) numeric() bool { return t == TypeU64 || t == TypeU256 }

// Value is a tagged union carrying one concrete instance of a VarType.
type Value struct {
	Type VarType `json:"type"`
	Num  U256    `json:"num,omitempty"`
	Str  string  `json:"str,omitempty"`
	Bool bool    `json:"bool,omitempty"`
	Addr Address `json:"addr,omitempty"`
}

// ZeroValue returns the default (zero) instance of t, used to initialise
// declared variables that have no explicit default and for absent mapping
// cells ("absent cell = 0" 's map_add/map_sub rule).
func ZeroValue(t VarType) Value {
	switch t {
	case TypeU64, TypeU256:
		return Value{Type: t, Num: ZeroU256()}
	case TypeString:
		return Value{Type: t, Str: ""}
	case TypeBool:
		return Value{Type: t, Bool: false}
	case TypeAddress:
		return Value{Type: t, Addr: AddressZero}
	default:
		return Value{}
	}
}

func (v Value) marshal() []byte {
	b, _ := json.Marshal(v)
	return b
}

func unmarshalValue(data []byte) (Value, error) {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return Value{}, fmt.Errorf("mvm: decode value: %w", err)
	}
	return v, nil
}

// Equal performs type-checked equality, used by the `==`/`≠` guard
// comparators.
func (v Value) Equal(o Value) (bool, error) {
	if v.Type != o.Type {
		return false, fmt.Errorf("mvm: type mismatch %s vs %s", v.Type, o.Type)
	}
	switch v.Type {
	case TypeU64, TypeU256:
		return v.Num.Equal(o.Num), nil
	case TypeString:
		return v.Str == o.Str, nil
	case TypeBool:
		return v.Bool == o.Bool, nil
	case TypeAddress:
		return v.Addr == o.Addr, nil
	}
	return false, fmt.Errorf("mvm: unknown type %s", v.Type)
}

// Compare orders two numeric values; non-numeric types only support
// equality (enforced by callers before reaching here).
func (v Value) Compare(o Value) (int, error) {
	if !v.Type.numeric() || !o.Type.numeric() {
		return 0, fmt.Errorf("mvm: ordering comparison on non-numeric type")
	}
	return v.Num.Cmp(o.Num), nil
}

func (v Value) String() string {
	switch v.Type {
	case TypeU64, TypeU256:
		return v.Num.String()
	case TypeString:
		return v.Str
	case TypeBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeAddress:
		return v.Addr.String()
	default:
		return ""
	}
}
