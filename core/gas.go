package core

// gas.go - the fixed gas schedule: a flat map from OpKind to cost that the
// VM consults before executing each instruction, plus the base costs for
// each transaction kind.

const (
	GasBaseTx            uint64 = 21000
	GasCreateToken       uint64 = 79000
	GasTransferToken     uint64 = 29000
	GasDeployContractBase uint64 = 179000
	GasCallContractBase  uint64 = 29000
)

var opGas = map[OpKind]uint64{
	OpSet:      5000,
	OpAdd:      5000,
	OpSub:      5000,
	OpMul:      5000,
	OpDiv:      5000,
	OpMod:      5000,
	OpMapSet:   10000,
	OpMapAdd:   10000,
	OpMapSub:   10000,
	OpMapMul:   10000,
	OpMapDiv:   10000,
	OpMapMod:   10000,
	OpRequire:  1000,
	OpGuard:    1000,
	OpTransfer: 20000,
	OpReturn:   100,
	OpIf:       500,
	OpEmit:     1000,
}

// GasForOp returns the fixed per-opcode cost, including the cost of the
// branch selector itself for `if` (the body of whichever arm executes is
// charged separately, op by op).
func GasForOp(k OpKind) uint64 {
	if c, ok := opGas[k]; ok {
		return c
	}
	return 0
}

// gasPerStoredOp is the per-op storage surcharge charged at deploy time,
// separate from the per-call execution cost in opGas: a larger declared
// body costs more to persist regardless of how often it later runs.
const gasPerStoredOp uint64 = 400

// gasForDeploy estimates deployment cost from the declared body size: the
// fixed base cost plus a flat per-op storage surcharge for every op in
// every function, counted recursively through `if` branches.
func gasForDeploy(spec ContractSpec) uint64 {
	total := GasDeployContractBase
	for _, f := range spec.Functions {
		total += staticOpCount(f.Body) * gasPerStoredOp
	}
	return total
}

func staticOpCount(ops []Op) uint64 {
	var n uint64
	for _, op := range ops {
		n++
		if op.Kind == OpIf {
			n += staticOpCount(op.Then)
			n += staticOpCount(op.Else)
		}
	}
	return n
}
