package core

import (
	"encoding/json"
	"testing"
)

func fundedAccount(t *testing.T, store *StateStore, addr Address, bal U256) {
	t.Helper()
	b := store.NewBatch()
	putAccount(b, addr, Account{Balance: bal, Nonce: 0})
	if err := store.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func signedTx(t *testing.T, priv PrivateKey, kind TxKind, nonce uint64, data []byte) Transaction {
	t.Helper()
	tx := Transaction{Kind: kind, From: DeriveAddress(priv.Public().(PublicKey)), Nonce: nonce, Data: data}
	tx.Sign(priv)
	return tx
}

func TestApplyTransactionTransferMovesBalance(t *testing.T) {
	store := newTestStore(t)
	senderPriv, senderPub, _ := GenerateKeypair()
	sender := DeriveAddress(senderPub)
	receiver := Address{7}
	fundedAccount(t, store, sender, NewU256(1000))

	data, _ := jsonMarshal(TransferData{To: receiver, Value: NewU256(100)})
	tx := signedTx(t, senderPriv, TxTransfer, 0, data)

	b := store.NewBatch()
	receipt, err := ApplyTransaction(store, b, tx, 1, 1000)
	if err != nil {
		t.Fatalf("ApplyTransaction: %v", err)
	}
	if err := store.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if receipt.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", receipt.Status, receipt.ErrorCode)
	}

	senderBal, _ := store.BalanceOf(sender)
	receiverBal, _ := store.BalanceOf(receiver)
	if senderBal.Uint64() != 900 {
		t.Fatalf("sender balance = %s, want 900", senderBal)
	}
	if receiverBal.Uint64() != 100 {
		t.Fatalf("receiver balance = %s, want 100", receiverBal)
	}
	nonce, _ := store.NonceOf(sender)
	if nonce != 1 {
		t.Fatalf("nonce = %d, want 1", nonce)
	}
}

func TestApplyTransactionInsufficientFundsStillAdvancesNonce(t *testing.T) {
	store := newTestStore(t)
	senderPriv, senderPub, _ := GenerateKeypair()
	sender := DeriveAddress(senderPub)
	fundedAccount(t, store, sender, NewU256(10))

	data, _ := jsonMarshal(TransferData{To: Address{7}, Value: NewU256(100)})
	tx := signedTx(t, senderPriv, TxTransfer, 0, data)

	b := store.NewBatch()
	receipt, err := ApplyTransaction(store, b, tx, 1, 1000)
	if err != nil {
		t.Fatalf("ApplyTransaction: %v", err)
	}
	if err := store.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if receipt.Status != StatusFailed {
		t.Fatal("expected a failed receipt for insufficient funds")
	}
	nonce, _ := store.NonceOf(sender)
	if nonce != 1 {
		t.Fatalf("nonce must still advance on failure, got %d", nonce)
	}
	bal, _ := store.BalanceOf(sender)
	if bal.Uint64() != 10 {
		t.Fatalf("balance must be untouched on failure, got %s", bal)
	}
}

func TestApplyTransactionCreateAndTransferToken(t *testing.T) {
	store := newTestStore(t)
	creatorPriv, creatorPub, _ := GenerateKeypair()
	creator := DeriveAddress(creatorPub)
	fundedAccount(t, store, creator, NewU256(1000))

	createData, _ := jsonMarshal(CreateTokenData{Name: "Gold", Symbol: "GLD", TotalSupply: NewU256(500), Decimals: 2})
	tx1 := signedTx(t, creatorPriv, TxCreateToken, 0, createData)
	b := store.NewBatch()
	receipt1, err := ApplyTransaction(store, b, tx1, 1, 1000)
	if err != nil {
		t.Fatalf("ApplyTransaction create_token: %v", err)
	}
	if err := store.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if receipt1.Status != StatusSuccess {
		t.Fatalf("create_token failed: %s", receipt1.ErrorCode)
	}
	tokenAddr := receipt1.ReturnValue.Addr

	holder := Address{5}
	transferData, _ := jsonMarshal(TransferTokenData{Token: tokenAddr, To: holder, Value: NewU256(200)})
	tx2 := signedTx(t, creatorPriv, TxTransferToken, 1, transferData)
	b2 := store.NewBatch()
	receipt2, err := ApplyTransaction(store, b2, tx2, 2, 2000)
	if err != nil {
		t.Fatalf("ApplyTransaction transfer_token: %v", err)
	}
	if err := store.Commit(b2); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if receipt2.Status != StatusSuccess {
		t.Fatalf("transfer_token failed: %s", receipt2.ErrorCode)
	}

	creatorBal, _, _ := store.GetTokenBalance(tokenAddr, creator)
	holderBal, _, _ := store.GetTokenBalance(tokenAddr, holder)
	if creatorBal.Uint64()+holderBal.Uint64() != 500 {
		t.Fatalf("token supply invariant violated: %s + %s != 500", creatorBal, holderBal)
	}
	if holderBal.Uint64() != 200 {
		t.Fatalf("holder balance = %s, want 200", holderBal)
	}
}

func TestApplyTransactionDeployAndCallContract(t *testing.T) {
	store := newTestStore(t)
	ownerPriv, ownerPub, _ := GenerateKeypair()
	owner := DeriveAddress(ownerPub)
	fundedAccount(t, store, owner, NewU256(1000))

	deployData, _ := jsonMarshal(DeployContractData{Spec: validCounterSpec()})
	tx1 := signedTx(t, ownerPriv, TxDeployContract, 0, deployData)
	b := store.NewBatch()
	receipt1, err := ApplyTransaction(store, b, tx1, 1, 1000)
	if err != nil {
		t.Fatalf("ApplyTransaction deploy: %v", err)
	}
	if err := store.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if receipt1.Status != StatusSuccess {
		t.Fatalf("deploy failed: %s", receipt1.ErrorCode)
	}
	contractAddr := receipt1.ReturnValue.Addr

	callData, _ := jsonMarshal(CallContractData{Contract: contractAddr, Function: "increment", Args: map[string]Value{}})
	tx2 := signedTx(t, ownerPriv, TxCallContract, 1, callData)
	b2 := store.NewBatch()
	receipt2, err := ApplyTransaction(store, b2, tx2, 2, 2000)
	if err != nil {
		t.Fatalf("ApplyTransaction call: %v", err)
	}
	if err := store.Commit(b2); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if receipt2.Status != StatusSuccess {
		t.Fatalf("call failed: %s", receipt2.ErrorCode)
	}
	v, ok, _ := store.GetVar(contractAddr, "count")
	if !ok || v.Num.Uint64() != 1 {
		t.Fatalf("expected count=1 after increment, got ok=%v v=%s", ok, v.Num)
	}
}

func TestApplyTransactionAutoGetterAndSetter(t *testing.T) {
	store := newTestStore(t)
	ownerPriv, ownerPub, _ := GenerateKeypair()
	owner := DeriveAddress(ownerPub)
	fundedAccount(t, store, owner, NewU256(1000))

	deployData, _ := jsonMarshal(DeployContractData{Spec: validCounterSpec()})
	tx1 := signedTx(t, ownerPriv, TxDeployContract, 0, deployData)
	b := store.NewBatch()
	receipt1, err := ApplyTransaction(store, b, tx1, 1, 1000)
	if err != nil {
		t.Fatalf("ApplyTransaction deploy: %v", err)
	}
	if err := store.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	contractAddr := receipt1.ReturnValue.Addr

	getData, _ := jsonMarshal(CallContractData{Contract: contractAddr, Function: "get_count", Args: map[string]Value{}})
	tx2 := signedTx(t, ownerPriv, TxCallContract, 1, getData)
	b2 := store.NewBatch()
	receipt2, err := ApplyTransaction(store, b2, tx2, 2, 2000)
	if err != nil {
		t.Fatalf("ApplyTransaction get_count: %v", err)
	}
	if err := store.Commit(b2); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if receipt2.Status != StatusSuccess {
		t.Fatalf("get_count failed: %s", receipt2.ErrorCode)
	}
	if receipt2.ReturnValue == nil || receipt2.ReturnValue.Num.Uint64() != 0 {
		t.Fatalf("expected get_count=0, got %v", receipt2.ReturnValue)
	}

	setData, _ := jsonMarshal(CallContractData{
		Contract: contractAddr,
		Function: "set_count",
		Args:     map[string]Value{autoVarArg: {Type: TypeU256, Num: NewU256(42)}},
	})
	tx3 := signedTx(t, ownerPriv, TxCallContract, 2, setData)
	b3 := store.NewBatch()
	receipt3, err := ApplyTransaction(store, b3, tx3, 3, 3000)
	if err != nil {
		t.Fatalf("ApplyTransaction set_count: %v", err)
	}
	if err := store.Commit(b3); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if receipt3.Status != StatusSuccess {
		t.Fatalf("set_count by owner failed: %s", receipt3.ErrorCode)
	}
	v, ok, _ := store.GetVar(contractAddr, "count")
	if !ok || v.Num.Uint64() != 42 {
		t.Fatalf("expected count=42 after set_count, got ok=%v v=%s", ok, v.Num)
	}

	nonOwnerPriv, nonOwnerPub, _ := GenerateKeypair()
	nonOwner := DeriveAddress(nonOwnerPub)
	fundedAccount(t, store, nonOwner, NewU256(1000))
	rejectData, _ := jsonMarshal(CallContractData{
		Contract: contractAddr,
		Function: "set_count",
		Args:     map[string]Value{autoVarArg: {Type: TypeU256, Num: NewU256(9)}},
	})
	tx4 := signedTx(t, nonOwnerPriv, TxCallContract, 0, rejectData)
	b4 := store.NewBatch()
	receipt4, err := ApplyTransaction(store, b4, tx4, 4, 4000)
	if err != nil {
		t.Fatalf("ApplyTransaction set_count by non-owner: %v", err)
	}
	if err := store.Commit(b4); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if receipt4.Status != StatusFailed || receipt4.ErrorCode != "only_owner" {
		t.Fatalf("expected only_owner failure for non-owner set_count, got status=%s code=%s", receipt4.Status, receipt4.ErrorCode)
	}
	v, ok, _ = store.GetVar(contractAddr, "count")
	if !ok || v.Num.Uint64() != 42 {
		t.Fatalf("count must be unchanged after rejected set_count, got ok=%v v=%s", ok, v.Num)
	}
}

func jsonMarshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
