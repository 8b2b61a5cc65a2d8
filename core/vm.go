package core

// vm.go - the Mosh VM: a deterministic, bounded, tree-walking interpreter
// over the Op/Expr tree declared in op.go. It interprets the declarative
// tree directly rather than dispatching into compiled bytecode, charging
// gas per opcode as it walks.

import (
	"fmt"
)

// CallEnv carries everything an expression or op may reference during one
// function invocation.
type CallEnv struct {
	Header      ContractHeader
	Caller      Address
	CallValue   U256
	Args        map[string]Value
	BlockHeight uint64
	BlockTime   uint64
	Journal     *Journal
	View        bool // true for free/gas-0 read-only calls
}

// Exec runs one declared function of header's contract, returning its declared
// return value (nil if the function returns nothing) and the gas consumed.
// gasLimit bounds execution; exceeding it fails ErrOutOfGas.
func Exec(env *CallEnv, fn FunctionSpec, gasLimit uint64) (*Value, uint64, error) {
	if fn.has(ModOnlyOwner) && env.Caller != env.Header.Owner {
		return nil, 0, ErrOnlyOwner
	}
	if !fn.has(ModPayable) && !env.CallValue.IsZero() {
		return nil, 0, ErrNotPayable
	}

	used := uint64(0)
	ret, err := execOps(env, fn.Body, &used, gasLimit, fn.has(ModView), 0)
	if err != nil {
		return nil, used, err
	}
	return ret, used, nil
}

func chargeGas(used *uint64, limit uint64, cost uint64) error {
	if *used+cost > limit {
		return ErrOutOfGas
	}
	*used += cost
	return nil
}

func execOps(env *CallEnv, ops []Op, used *uint64, limit uint64, readOnly bool, depth int) (*Value, error) {
	if depth > MaxNestingDepth {
		return nil, fmt.Errorf("%w: nesting too deep", ErrSpecLimitExceeded)
	}
	for _, op := range ops {
		if err := chargeGas(used, limit, GasForOp(op.Kind)); err != nil {
			return nil, err
		}
		switch op.Kind {
		case OpSet, OpAdd, OpSub, OpMul, OpDiv, OpMod:
			if readOnly {
				return nil, ErrNotView
			}
			if err := execArith(env, op); err != nil {
				return nil, err
			}
		case OpMapSet, OpMapAdd, OpMapSub, OpMapMul, OpMapDiv, OpMapMod:
			if readOnly {
				return nil, ErrNotView
			}
			if err := execMapArith(env, op); err != nil {
				return nil, err
			}
		case OpRequire, OpGuard:
			ok, err := evalBool(env, op.Cond)
			if err != nil {
				return nil, err
			}
			if !ok {
				msg := op.Msg
				if msg == "" {
					msg = string(op.Kind)
				}
				return nil, &GuardFailedError{Msg: msg}
			}
		case OpIf:
			ok, err := evalBool(env, op.Cond)
			if err != nil {
				return nil, err
			}
			branch := op.Else
			if ok {
				branch = op.Then
			}
			ret, err := execOps(env, branch, used, limit, readOnly, depth+1)
			if err != nil {
				return nil, err
			}
			if ret != nil {
				return ret, nil
			}
		case OpReturn:
			if op.Result == nil {
				return &Value{}, nil
			}
			v, err := evalExpr(env, op.Result)
			if err != nil {
				return nil, err
			}
			return &v, nil
		case OpTransfer:
			if readOnly {
				return nil, ErrNotView
			}
			if err := execTransfer(env, op); err != nil {
				return nil, err
			}
		case OpEmit:
			if err := execEmit(env, op); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("mvm: unknown opcode %s", op.Kind)
		}
	}
	return nil, nil
}

func execArith(env *CallEnv, op Op) error {
	varType, cur, err := readTarget(env, op.Target)
	if err != nil {
		return err
	}
	if op.Kind == OpSet {
		v, err := evalExpr(env, op.Value)
		if err != nil {
			return err
		}
		if v.Type != varType {
			return fmt.Errorf("%w: type mismatch assigning %s", ErrGuardFailed, op.Target)
		}
		env.Journal.SetVar(env.Header.Address, op.Target, v)
		return nil
	}
	rhs, err := evalExpr(env, op.Value)
	if err != nil {
		return err
	}
	if !varType.numeric() || !rhs.Type.numeric() {
		return fmt.Errorf("%w: arithmetic on non-numeric variable %s", ErrGuardFailed, op.Target)
	}
	result, err := applyNumeric(op.Kind, cur.Num, rhs.Num)
	if err != nil {
		return err
	}
	env.Journal.SetVar(env.Header.Address, op.Target, Value{Type: varType, Num: result})
	return nil
}

func readTarget(env *CallEnv, name string) (VarType, Value, error) {
	v, ok, err := env.Journal.GetVar(env.Header.Address, name)
	if err != nil {
		return "", Value{}, err
	}
	if !ok {
		return "", Value{}, fmt.Errorf("mvm: unknown variable %s", name)
	}
	return v.Type, v, nil
}

func execMapArith(env *CallEnv, op Op) error {
	keyVal, err := evalExpr(env, op.Key)
	if err != nil {
		return err
	}
	key := keyVal.String()
	cur, ok, err := env.Journal.GetMapCell(env.Header.Address, op.Mapping, key)
	if err != nil {
		return err
	}
	var valType VarType
	if ok {
		valType = cur.Type
	} else {
		valType = TypeU256 // an unset cell reads back as numeric zero
		cur = ZeroValue(TypeU256)
	}
	if op.Kind == OpMapSet {
		v, err := evalExpr(env, op.Value)
		if err != nil {
			return err
		}
		env.Journal.SetMapCell(env.Header.Address, op.Mapping, key, v)
		return nil
	}
	rhs, err := evalExpr(env, op.Value)
	if err != nil {
		return err
	}
	if !valType.numeric() || !rhs.Type.numeric() {
		return fmt.Errorf("%w: map arithmetic on non-numeric cell", ErrGuardFailed)
	}
	result, err := applyNumeric(op.Kind, cur.Num, rhs.Num)
	if err != nil {
		return err
	}
	env.Journal.SetMapCell(env.Header.Address, op.Mapping, key, Value{Type: valType, Num: result})
	return nil
}

func applyNumeric(kind OpKind, a, b U256) (U256, error) {
	switch kind {
	case OpAdd, OpMapAdd:
		return a.Add(b)
	case OpSub, OpMapSub:
		return a.Sub(b)
	case OpMul, OpMapMul:
		return a.Mul(b)
	case OpDiv, OpMapDiv:
		return a.Div(b)
	case OpMod, OpMapMod:
		return a.Mod(b)
	}
	return U256{}, fmt.Errorf("mvm: unsupported numeric op %s", kind)
}

func execTransfer(env *CallEnv, op Op) error {
	if env.Header.LinkedToken == nil {
		return fmt.Errorf("%w: contract has no linked token", ErrGuardFailed)
	}
	toVal, err := evalExpr(env, op.To)
	if err != nil {
		return err
	}
	if toVal.Type != TypeAddress {
		return fmt.Errorf("%w: transfer target is not an address", ErrGuardFailed)
	}
	amtVal, err := evalExpr(env, op.Amount)
	if err != nil {
		return err
	}
	if !amtVal.Type.numeric() {
		return fmt.Errorf("%w: transfer amount is not numeric", ErrGuardFailed)
	}
	token := *env.Header.LinkedToken
	fromBal, err := env.Journal.GetTokenBalance(token, env.Header.Address)
	if err != nil {
		return err
	}
	if fromBal.LessThan(amtVal.Num) {
		return ErrInsufficientContractBalance
	}
	newFrom, err := fromBal.Sub(amtVal.Num)
	if err != nil {
		return err
	}
	toBal, err := env.Journal.GetTokenBalance(token, toVal.Addr)
	if err != nil {
		return err
	}
	newTo, err := toBal.Add(amtVal.Num)
	if err != nil {
		return err
	}
	env.Journal.SetTokenBalance(token, env.Header.Address, newFrom)
	env.Journal.SetTokenBalance(token, toVal.Addr, newTo)
	return nil
}

func execEmit(env *CallEnv, op Op) error {
	args := map[string]Value{}
	for name, expr := range op.Args {
		v, err := evalExpr(env, expr)
		if err != nil {
			return err
		}
		args[name] = v
	}
	env.Journal.Emit(Event{
		Contract:    env.Header.Address,
		BlockHeight: env.BlockHeight,
		Name:        op.Event,
		Args:        args,
	})
	return nil
}

func evalBool(env *CallEnv, e *Expr) (bool, error) {
	v, err := evalExpr(env, e)
	if err != nil {
		return false, err
	}
	if v.Type != TypeBool {
		return false, fmt.Errorf("%w: condition is not boolean", ErrGuardFailed)
	}
	return v.Bool, nil
}

func evalExpr(env *CallEnv, e *Expr) (Value, error) {
	if e == nil {
		return Value{}, fmt.Errorf("mvm: nil expression")
	}
	switch e.Kind {
	case ExprLiteral:
		return e.Lit, nil
	case ExprRef:
		return resolveRef(env, e.Ref)
	case ExprMapRef:
		keyVal, err := evalExpr(env, e.Key)
		if err != nil {
			return Value{}, err
		}
		cell, ok, err := env.Journal.GetMapCell(env.Header.Address, e.Mapping, keyVal.String())
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return ZeroValue(TypeU256), nil
		}
		return cell, nil
	case ExprCompare:
		return evalCompare(env, e)
	}
	return Value{}, fmt.Errorf("mvm: unknown expression kind %s", e.Kind)
}

// resolveRef implements lookup precedence: builtins, then
// function argument, then contract variable.
func resolveRef(env *CallEnv, name string) (Value, error) {
	switch name {
	case "msg.sender":
		return Value{Type: TypeAddress, Addr: env.Caller}, nil
	case "msg.amount":
		return Value{Type: TypeU256, Num: env.CallValue}, nil
	case "block.height":
		return Value{Type: TypeU64, Num: NewU256(env.BlockHeight)}, nil
	case "block.timestamp":
		return Value{Type: TypeU64, Num: NewU256(env.BlockTime)}, nil
	case "contract.owner":
		return Value{Type: TypeAddress, Addr: env.Header.Owner}, nil
	case "contract.address":
		return Value{Type: TypeAddress, Addr: env.Header.Address}, nil
	}
	if v, ok := env.Args[name]; ok {
		return v, nil
	}
	v, ok, err := env.Journal.GetVar(env.Header.Address, name)
	if err != nil {
		return Value{}, err
	}
	if ok {
		return v, nil
	}
	return Value{}, fmt.Errorf("mvm: unresolved reference %q", name)
}

func evalCompare(env *CallEnv, e *Expr) (Value, error) {
	l, err := evalExpr(env, e.Left)
	if err != nil {
		return Value{}, err
	}
	r, err := evalExpr(env, e.Right)
	if err != nil {
		return Value{}, err
	}
	switch e.Op {
	case CmpEq:
		eq, err := l.Equal(r)
		return Value{Type: TypeBool, Bool: eq}, err
	case CmpNe:
		eq, err := l.Equal(r)
		return Value{Type: TypeBool, Bool: !eq}, err
	case CmpLt, CmpLe, CmpGt, CmpGe:
		cmp, err := l.Compare(r)
		if err != nil {
			return Value{}, err
		}
		var ok bool
		switch e.Op {
		case CmpLt:
			ok = cmp < 0
		case CmpLe:
			ok = cmp <= 0
		case CmpGt:
			ok = cmp > 0
		case CmpGe:
			ok = cmp >= 0
		}
		return Value{Type: TypeBool, Bool: ok}, nil
	}
	return Value{}, fmt.Errorf("mvm: unknown comparator %s", e.Op)
}
