package core

// errors.go - the closed set of admission and execution errors named in
// the protocol's error design. Each is a distinct sentinel so callers can
// errors.Is against it; ErrorCode maps a sentinel to its wire-level
// snake_case event code.

import "errors"

// Admission errors - rejected at submit, never enter a block.
var (
	ErrBadAddress          = errors.New("mvm: bad address")
	ErrBadSignature        = errors.New("mvm: bad signature")
	ErrSignerMismatch      = errors.New("mvm: signer mismatch")
	ErrInvalidNonce        = errors.New("mvm: invalid nonce")
	ErrNonceGap            = errors.New("mvm: nonce gap")
	ErrNonceAlreadyPending = errors.New("mvm: nonce already pending")
	ErrInsufficientFunds   = errors.New("mvm: insufficient funds")
	ErrMempoolFull         = errors.New("mvm: mempool full")
	ErrOversized           = errors.New("mvm: transaction exceeds gas limit")
	ErrSpecLimitExceeded   = errors.New("mvm: contract spec limit exceeded")
)

// Execution errors - the transaction is recorded as Failed; gas is
// consumed and the sender's nonce still advances.
var (
	ErrArithmeticError              = errors.New("mvm: arithmetic error")
	ErrInsufficientContractBalance  = errors.New("mvm: insufficient contract balance")
	ErrInsufficientTokenBalance     = errors.New("mvm: insufficient token balance")
	ErrOnlyOwner                    = errors.New("mvm: only owner")
	ErrNotPayable                   = errors.New("mvm: function is not payable")
	ErrNotView                      = errors.New("mvm: view function performed a write")
	ErrReentrancy                   = errors.New("mvm: reentrant call")
	ErrMethodNotFound               = errors.New("mvm: method not found")
	ErrContractNotFound             = errors.New("mvm: contract not found")
	ErrOutOfGas                     = errors.New("mvm: out of gas")
)

// GuardFailedError carries the guard/require message supplied by the
// contract author; it wraps ErrGuardFailed so errors.Is still matches.
type GuardFailedError struct {
	Msg string
}

var ErrGuardFailed = errors.New("mvm: guard failed")

func (e *GuardFailedError) Error() string { return "mvm: guard failed: " + e.Msg }
func (e *GuardFailedError) Unwrap() error { return ErrGuardFailed }

// ErrorCode maps a sentinel error to the abstract event code carried in the
// "error" field of responses built atop this package (see ).
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBadSignature):
		return "invalid_signature"
	case errors.Is(err, ErrBadAddress), errors.Is(err, ErrSignerMismatch):
		return "invalid_signature"
	case errors.Is(err, ErrInvalidNonce):
		return "invalid_nonce"
	case errors.Is(err, ErrNonceAlreadyPending):
		return "nonce_already_pending"
	case errors.Is(err, ErrNonceGap):
		return "nonce_gap"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_balance"
	case errors.Is(err, ErrInsufficientTokenBalance):
		return "insufficient_token_balance"
	case errors.Is(err, ErrMempoolFull):
		return "mempool_full"
	case errors.Is(err, ErrContractNotFound):
		return "contract_not_found"
	case errors.Is(err, ErrMethodNotFound):
		return "method_not_found"
	case errors.Is(err, ErrOnlyOwner):
		return "only_owner"
	case errors.Is(err, ErrNotView):
		return "not_view_function"
	case errors.Is(err, ErrNotPayable):
		return "not_payable"
	case errors.Is(err, ErrGuardFailed):
		return "guard_failed"
	case errors.Is(err, ErrArithmeticError):
		return "arithmetic_error"
	case errors.Is(err, ErrReentrancy):
		return "reentrancy"
	case errors.Is(err, ErrSpecLimitExceeded):
		return "spec_limit_exceeded"
	case errors.Is(err, ErrOutOfGas):
		return "out_of_gas"
	case errors.Is(err, ErrInsufficientContractBalance):
		return "insufficient_contract_balance"
	default:
		return "internal_error"
	}
}
