package core

import (
	"testing"

	"mvm/internal/testutil"
)

// TestStateStoreIteratorOrdering opens a store inside a Sandbox (rather
// than t.TempDir) to exercise the on-disk open/close path the way a node
// restart would, and checks that prefix iteration returns keys in
// lexicographic order.
func TestStateStoreIteratorOrdering(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox: %v", err)
	}
	defer sb.Cleanup()

	store, err := OpenStateStore(sb.Path("state"))
	if err != nil {
		t.Fatalf("OpenStateStore: %v", err)
	}
	defer store.Close()

	addrs := []Address{{3}, {1}, {2}}
	b := store.NewBatch()
	for _, a := range addrs {
		putAccount(b, a, Account{Balance: NewU256(1), Nonce: 0})
	}
	if err := store.Commit(b); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	it := store.Iterator([]byte{tagAccount})
	defer it.Release()
	var seen []byte
	for it.Next() {
		seen = append(seen, it.Key()[1])
	}
	if err := it.Error(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Fatalf("expected ordered [1,2,3], got %v", seen)
	}
}

func TestStateStoreReopenPersistsData(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox: %v", err)
	}
	defer sb.Cleanup()

	path := sb.Path("state")
	store, err := OpenStateStore(path)
	if err != nil {
		t.Fatalf("OpenStateStore: %v", err)
	}
	addr := Address{42}
	b := store.NewBatch()
	putAccount(b, addr, Account{Balance: NewU256(77), Nonce: 3})
	if err := store.Commit(b); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenStateStore(path)
	if err != nil {
		t.Fatalf("reopen OpenStateStore: %v", err)
	}
	defer reopened.Close()
	acc, err := reopened.GetAccount(addr)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if acc.Nonce != 3 || acc.Balance.Uint64() != 77 {
		t.Fatalf("unexpected account after reopen: %+v", acc)
	}
}
