package core

// automethod.go - dispatch for the getter/setter methods every declared
// variable and mapping carries for free, plus the read-only accessors over
// the reserved header fields (owner, creator, token, address). These have
// no declared Op body of their own, unlike a user-written function, so
// they execute directly against the journal instead of through execOps.

import "fmt"

// Implicit argument names for auto-generated setters, since they carry no
// declared Arg list of their own to name their parameters.
const (
	autoVarArg    = "x"
	autoMapKeyArg = "k"
	autoMapValArg = "v"
)

// dispatchAutoMethod executes name against header's reserved fields,
// declared variables and mappings if it matches the get_/set_ naming
// convention, and reports whether it did (handled=false means the caller
// should fall through to ErrMethodNotFound). readOnly rejects any setter
// with ErrNotView, the same outcome a View user function's body gets for
// attempting a write.
func dispatchAutoMethod(j *Journal, header ContractHeader, caller Address, name string, args map[string]Value, readOnly bool) (*Value, uint64, bool, error) {
	if v, ok := headerFieldValue(header, name); ok {
		return v, GasForOp(OpReturn), true, nil
	}

	for _, decl := range header.Spec.Variables {
		switch name {
		case "get_" + decl.Name:
			val, ok, err := j.GetVar(header.Address, decl.Name)
			if err != nil {
				return nil, 0, true, err
			}
			if !ok {
				val = ZeroValue(decl.Type)
			}
			return &val, GasForOp(OpReturn), true, nil
		case "set_" + decl.Name:
			if readOnly {
				return nil, 0, true, ErrNotView
			}
			if caller != header.Owner {
				return nil, 0, true, ErrOnlyOwner
			}
			newVal, ok := args[autoVarArg]
			if !ok || newVal.Type != decl.Type {
				return nil, 0, true, fmt.Errorf("%w: type mismatch assigning %s", ErrGuardFailed, decl.Name)
			}
			j.SetVar(header.Address, decl.Name, newVal)
			return nil, GasForOp(OpSet), true, nil
		}
	}

	for _, decl := range header.Spec.Mappings {
		switch name {
		case "get_" + decl.Name:
			keyVal, ok := args[autoMapKeyArg]
			if !ok || keyVal.Type != decl.KeyType {
				return nil, 0, true, fmt.Errorf("%w: missing or mistyped key argument", ErrGuardFailed)
			}
			cell, ok, err := j.GetMapCell(header.Address, decl.Name, keyVal.String())
			if err != nil {
				return nil, 0, true, err
			}
			if !ok {
				cell = ZeroValue(decl.ValType)
			}
			return &cell, GasForOp(OpReturn), true, nil
		case "set_" + decl.Name:
			if readOnly {
				return nil, 0, true, ErrNotView
			}
			if caller != header.Owner {
				return nil, 0, true, ErrOnlyOwner
			}
			keyVal, ok := args[autoMapKeyArg]
			if !ok || keyVal.Type != decl.KeyType {
				return nil, 0, true, fmt.Errorf("%w: missing or mistyped key argument", ErrGuardFailed)
			}
			valArg, ok := args[autoMapValArg]
			if !ok || valArg.Type != decl.ValType {
				return nil, 0, true, fmt.Errorf("%w: missing or mistyped value argument", ErrGuardFailed)
			}
			j.SetMapCell(header.Address, decl.Name, keyVal.String(), valArg)
			return nil, GasForOp(OpMapSet), true, nil
		}
	}

	return nil, 0, false, nil
}

// autoMethodExists reports whether name matches the get_/set_ naming
// convention for header, without executing it. Used to decide whether a
// call resolves to something at all before any value transfer happens.
func autoMethodExists(header ContractHeader, name string) bool {
	if _, ok := headerFieldValue(header, name); ok {
		return true
	}
	for _, decl := range header.Spec.Variables {
		if name == "get_"+decl.Name || name == "set_"+decl.Name {
			return true
		}
	}
	for _, decl := range header.Spec.Mappings {
		if name == "get_"+decl.Name || name == "set_"+decl.Name {
			return true
		}
	}
	return false
}

// headerFieldValue reads the accessor for a reserved name that maps onto a
// ContractHeader field rather than a declared variable.
func headerFieldValue(header ContractHeader, name string) (*Value, bool) {
	switch name {
	case "get_owner":
		v := Value{Type: TypeAddress, Addr: header.Owner}
		return &v, true
	case "get_creator":
		v := Value{Type: TypeAddress, Addr: header.Creator}
		return &v, true
	case "get_address":
		v := Value{Type: TypeAddress, Addr: header.Address}
		return &v, true
	case "get_token":
		addr := AddressZero
		if header.LinkedToken != nil {
			addr = *header.LinkedToken
		}
		v := Value{Type: TypeAddress, Addr: addr}
		return &v, true
	}
	return nil, false
}
