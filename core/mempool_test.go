package core

import (
	"errors"
	"testing"
)

func defaultMempoolConfig() MempoolConfig {
	return MempoolConfig{MaxTxs: 100, MaxTxsPerBlock: 10, BlockGasLimit: 10_000_000}
}

func TestMempoolAdmitsInNonceOrder(t *testing.T) {
	store := newTestStore(t)
	priv, pub, _ := GenerateKeypair()
	sender := DeriveAddress(pub)
	fundedAccount(t, store, sender, NewU256(10_000))

	mp := NewMempool(defaultMempoolConfig())

	data, _ := jsonMarshal(TransferData{To: Address{1}, Value: NewU256(1)})
	tx0 := signedTx(t, priv, TxTransfer, 0, data)
	tx1 := signedTx(t, priv, TxTransfer, 1, data)
	tx2 := signedTx(t, priv, TxTransfer, 2, data)

	if err := mp.Admit(store, tx1); !errors.Is(err, ErrNonceGap) {
		t.Fatalf("expected ErrNonceGap admitting nonce 1 before 0, got %v", err)
	}
	if err := mp.Admit(store, tx0); err != nil {
		t.Fatalf("Admit tx0: %v", err)
	}
	if err := mp.Admit(store, tx1); err != nil {
		t.Fatalf("Admit tx1: %v", err)
	}
	if err := mp.Admit(store, tx2); err != nil {
		t.Fatalf("Admit tx2: %v", err)
	}
	if err := mp.Admit(store, tx1); !errors.Is(err, ErrNonceAlreadyPending) {
		t.Fatalf("expected ErrNonceAlreadyPending re-admitting nonce 1, got %v", err)
	}

	selected := mp.Select()
	if len(selected) != 3 {
		t.Fatalf("expected 3 selected transactions, got %d", len(selected))
	}
	for i, tx := range selected {
		if tx.Nonce != uint64(i) {
			t.Fatalf("selected transaction %d has nonce %d, want %d", i, tx.Nonce, i)
		}
	}
}

func TestMempoolRejectsInsufficientFunds(t *testing.T) {
	store := newTestStore(t)
	priv, pub, _ := GenerateKeypair()
	sender := DeriveAddress(pub)
	fundedAccount(t, store, sender, NewU256(50))

	mp := NewMempool(defaultMempoolConfig())
	data, _ := jsonMarshal(TransferData{To: Address{1}, Value: NewU256(100)})
	tx := signedTx(t, priv, TxTransfer, 0, data)
	if err := mp.Admit(store, tx); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestMempoolRejectsBadSignature(t *testing.T) {
	store := newTestStore(t)
	priv, pub, _ := GenerateKeypair()
	sender := DeriveAddress(pub)
	fundedAccount(t, store, sender, NewU256(100))

	mp := NewMempool(defaultMempoolConfig())
	data, _ := jsonMarshal(TransferData{To: Address{1}, Value: NewU256(10)})
	tx := signedTx(t, priv, TxTransfer, 0, data)
	tx.Signature[0] ^= 0xFF
	if err := mp.Admit(store, tx); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}
