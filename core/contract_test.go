package core

import (
	"errors"
	"testing"
)

func validCounterSpec() ContractSpec {
	return ContractSpec{
		Name: "counter",
		Variables: []Variable{
			{Name: "count", Type: TypeU256, Default: Value{Type: TypeU256, Num: ZeroU256()}},
		},
		Functions: []FunctionSpec{
			{
				Name:      "increment",
				Modifiers: []Modifier{ModWrite},
				Body: []Op{
					{Kind: OpAdd, Target: "count", Value: &Expr{Kind: ExprLiteral, Lit: Value{Type: TypeU256, Num: NewU256(1)}}},
				},
			},
		},
	}
}

func TestContractSpecValidatePasses(t *testing.T) {
	if err := validCounterSpec().Validate(); err != nil {
		t.Fatalf("expected valid spec, got %v", err)
	}
}

func TestContractSpecRejectsTooManyVariables(t *testing.T) {
	spec := validCounterSpec()
	for i := 0; i < MaxVariables; i++ {
		spec.Variables = append(spec.Variables, Variable{Name: string(rune('a' + i)), Type: TypeU64})
	}
	if err := spec.Validate(); !errors.Is(err, ErrSpecLimitExceeded) {
		t.Fatalf("expected ErrSpecLimitExceeded, got %v", err)
	}
}

func TestContractSpecRejectsOversizedBody(t *testing.T) {
	spec := validCounterSpec()
	var body []Op
	for i := 0; i <= MaxOpsPerBody; i++ {
		body = append(body, Op{Kind: OpReturn})
	}
	spec.Functions[0].Body = body
	if err := spec.Validate(); !errors.Is(err, ErrSpecLimitExceeded) {
		t.Fatalf("expected ErrSpecLimitExceeded for oversized body, got %v", err)
	}
}

func TestContractSpecRejectsReservedName(t *testing.T) {
	spec := validCounterSpec()
	spec.Variables = append(spec.Variables, Variable{Name: "owner", Type: TypeAddress})
	if err := spec.Validate(); !errors.Is(err, ErrSpecLimitExceeded) {
		t.Fatalf("expected ErrSpecLimitExceeded for reserved name, got %v", err)
	}
}

func TestContractSpecRejectsAutoGeneratedCollision(t *testing.T) {
	spec := validCounterSpec()
	spec.Functions = append(spec.Functions, FunctionSpec{Name: "get_count", Modifiers: []Modifier{ModView}})
	if err := spec.Validate(); !errors.Is(err, ErrSpecLimitExceeded) {
		t.Fatalf("expected ErrSpecLimitExceeded for get_count collision, got %v", err)
	}
}

func TestDeriveContractAndTokenAddressesAreDistinctAndDeterministic(t *testing.T) {
	creator := Address{1, 2, 3}
	a1 := DeriveContractAddress(creator, 0)
	a2 := DeriveContractAddress(creator, 0)
	if a1 != a2 {
		t.Fatal("DeriveContractAddress is not deterministic")
	}
	if a1 == DeriveContractAddress(creator, 1) {
		t.Fatal("different nonces should derive different contract addresses")
	}
	if a1 == DeriveTokenAddress(creator, 0) {
		t.Fatal("contract and token address derivation should differ (domain-separated)")
	}
}
