package core

import (
	"errors"
	"testing"
)

func TestCallViewAutoGetter(t *testing.T) {
	store := newTestStore(t)
	owner := Address{1}
	header := deployCounter(t, store, owner)

	b := store.NewBatch()
	putVar(b, header.Address, "count", Value{Type: TypeU256, Num: NewU256(7)})
	if err := store.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	api := NewReadAPI(store, NewMempool(MempoolConfig{MaxTxs: 1, MaxTxsPerBlock: 1, BlockGasLimit: 1_000_000}))
	v, err := api.CallView(header.Address, "get_count", owner, map[string]Value{}, 1, 1000)
	if err != nil {
		t.Fatalf("CallView get_count: %v", err)
	}
	if v == nil || v.Num.Uint64() != 7 {
		t.Fatalf("expected get_count=7, got %v", v)
	}
}

func TestCallViewAutoSetterRejected(t *testing.T) {
	store := newTestStore(t)
	owner := Address{1}
	header := deployCounter(t, store, owner)

	api := NewReadAPI(store, NewMempool(MempoolConfig{MaxTxs: 1, MaxTxsPerBlock: 1, BlockGasLimit: 1_000_000}))
	_, err := api.CallView(header.Address, "set_count", owner, map[string]Value{autoVarArg: {Type: TypeU256, Num: NewU256(1)}}, 1, 1000)
	if !errors.Is(err, ErrNotView) {
		t.Fatalf("expected ErrNotView for set_count via CallView, got %v", err)
	}
	v, ok, _ := store.GetVar(header.Address, "count")
	if !ok || !v.Num.IsZero() {
		t.Fatalf("count must be unchanged by a rejected view call, got ok=%v v=%s", ok, v.Num)
	}
}

func TestCallViewHeaderFieldGetter(t *testing.T) {
	store := newTestStore(t)
	owner := Address{1}
	header := deployCounter(t, store, owner)

	api := NewReadAPI(store, NewMempool(MempoolConfig{MaxTxs: 1, MaxTxsPerBlock: 1, BlockGasLimit: 1_000_000}))
	v, err := api.CallView(header.Address, "get_owner", owner, map[string]Value{}, 1, 1000)
	if err != nil {
		t.Fatalf("CallView get_owner: %v", err)
	}
	if v == nil || v.Addr != owner {
		t.Fatalf("expected get_owner=%x, got %v", owner, v)
	}
}

func TestCallViewUnknownMethod(t *testing.T) {
	store := newTestStore(t)
	owner := Address{1}
	header := deployCounter(t, store, owner)

	api := NewReadAPI(store, NewMempool(MempoolConfig{MaxTxs: 1, MaxTxsPerBlock: 1, BlockGasLimit: 1_000_000}))
	if _, err := api.CallView(header.Address, "not_a_method", owner, map[string]Value{}, 1, 1000); !errors.Is(err, ErrMethodNotFound) {
		t.Fatalf("expected ErrMethodNotFound, got %v", err)
	}
}
