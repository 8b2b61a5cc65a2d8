package core

// op.go - the bounded opcode tree a contract function body is built from:
// a dozen declarative, JSON-representable operations instead of a
// general-purpose instruction set, so a body can be validated and gas-
// costed without ever touching a compiler or bytecode interpreter.

// OpKind names one of the bounded set of operations a function body may
// contain.
type OpKind string

const (
	OpSet     OpKind = "set"
	OpAdd     OpKind = "add"
	OpSub     OpKind = "sub"
	OpMul     OpKind = "mul"
	OpDiv     OpKind = "div"
	OpMod     OpKind = "mod"
	OpMapSet  OpKind = "map_set"
	OpMapAdd  OpKind = "map_add"
	OpMapSub  OpKind = "map_sub"
	OpMapMul  OpKind = "map_mul"
	OpMapDiv  OpKind = "map_div"
	OpMapMod  OpKind = "map_mod"
	OpRequire OpKind = "require"
	OpGuard   OpKind = "guard"
	OpIf      OpKind = "if"
	OpReturn  OpKind = "return"
	OpTransfer OpKind = "transfer"
	OpEmit    OpKind = "emit"
)

// Expr is a small expression tree: a literal, a reference, or a binary
// comparison used by require/guard/if conditions. Exactly one of its
// fields is meaningful for a given Kind.
type Expr struct {
	Kind ExprKind `json:"kind"`

	// ExprLiteral
	Lit Value `json:"lit,omitempty"`

	// ExprRef: one of "msg.sender", "msg.amount", "block.height",
	// "block.timestamp", "contract.owner", "contract.address", a function
	// argument name, or a bare contract variable name.
	Ref string `json:"ref,omitempty"`

	// ExprMapRef: mapping[key]
	Mapping string `json:"mapping,omitempty"`
	Key     *Expr  `json:"key,omitempty"`

	// ExprCompare
	Op    CompareOp `json:"op,omitempty"`
	Left  *Expr     `json:"left,omitempty"`
	Right *Expr     `json:"right,omitempty"`
}

type ExprKind string

const (
	ExprLiteral ExprKind = "literal"
	ExprRef     ExprKind = "ref"
	ExprMapRef  ExprKind = "map_ref"
	ExprCompare ExprKind = "compare"
)

// CompareOp is a guard/require/if condition operator.
type CompareOp string

const (
	CmpEq CompareOp = "=="
	CmpNe CompareOp = "!="
	CmpLt CompareOp = "<"
	CmpLe CompareOp = "<="
	CmpGt CompareOp = ">"
	CmpGe CompareOp = ">="
)

// Op is one statement in a function body.
type Op struct {
	Kind OpKind `json:"kind"`

	// set/add/sub/mul/div/mod: target variable name, rhs expression.
	Target string `json:"target,omitempty"`
	Value  *Expr  `json:"value,omitempty"`

	// map_*: target mapping name and the key expression, plus Value above.
	Mapping string `json:"mapping,omitempty"`
	Key     *Expr  `json:"key,omitempty"`

	// require/guard: the condition and failure message.
	Cond *Expr  `json:"cond,omitempty"`
	Msg  string `json:"msg,omitempty"`

	// if: condition plus nested branches.
	Then []Op `json:"then,omitempty"`
	Else []Op `json:"else,omitempty"`

	// return: the value expression.
	Result *Expr `json:"result,omitempty"`

	// transfer: recipient expression and amount expression, moves the
	// contract's linked token from the contract's own balance.
	To     *Expr `json:"to,omitempty"`
	Amount *Expr `json:"amount,omitempty"`

	// emit: event name and named argument expressions.
	Event string           `json:"event,omitempty"`
	Args  map[string]*Expr `json:"args,omitempty"`
}
