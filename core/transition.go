package core

// transition.go - ApplyTransaction, the dispatcher across the five
// transaction kinds, unified into one entry point that always bumps the
// sender's nonce and records a receipt whether execution succeeds or fails.

import (
	"fmt"

	logrus "github.com/sirupsen/logrus"
)

// ApplyTransaction executes tx against store within the block batch b,
// at the given block height/timestamp. It never returns an error for a
// transaction-level failure (that is recorded in the returned Receipt's
// Status/ErrorCode); it only returns an error for a store-level fault,
// which aborts the entire block.
func ApplyTransaction(store *StateStore, b *Batch, tx Transaction, height, blockTime uint64) (Receipt, error) {
	gasBudget, err := tx.EstimatedGas()
	if err != nil {
		return Receipt{}, err
	}

	receipt, execErr := execute(store, b, tx, height, blockTime, gasBudget)
	receipt.TxHash = tx.Hash()
	receipt.BlockHeight = height
	if execErr != nil {
		receipt.Status = StatusFailed
		receipt.ErrorCode = ErrorCode(execErr)
		logrus.WithFields(logrus.Fields{
			"tx_hash": tx.Hash().Hex(),
			"kind":    tx.Kind,
			"error":   execErr,
		}).Warn("transition: execution failed")
	} else {
		receipt.Status = StatusSuccess
	}

	if err := bumpNonce(store, b, tx.From); err != nil {
		return Receipt{}, err
	}
	putTx(b, StoredTx{Tx: tx, Receipt: receipt})
	if err := indexTxByAddress(store, b, tx.From, tx.Hash()); err != nil {
		return Receipt{}, err
	}
	if to, ok := effectiveTo(tx); ok && to != tx.From {
		if err := indexTxByAddress(store, b, to, tx.Hash()); err != nil {
			return Receipt{}, err
		}
	}
	return receipt, nil
}

func effectiveTo(tx Transaction) (Address, bool) {
	switch tx.Kind {
	case TxTransfer:
		d, err := tx.TransferData()
		if err != nil {
			return Address{}, false
		}
		return d.To, true
	case TxTransferToken:
		d, err := tx.TransferTokenData()
		if err != nil {
			return Address{}, false
		}
		return d.To, true
	case TxCallContract:
		d, err := tx.CallContractData()
		if err != nil {
			return Address{}, false
		}
		return d.Contract, true
	}
	return Address{}, false
}

// execute runs the kind-specific state transition. Any returned error
// means the transaction is recorded Failed; state writes made by this
// function up to the point of the error must not be visible, which is
// why contract execution runs through a Journal that is only flushed on
// success, while the simpler kinds below write directly but check every
// precondition before writing anything irreversible.
func execute(store *StateStore, b *Batch, tx Transaction, height, blockTime, gasBudget uint64) (Receipt, error) {
	switch tx.Kind {
	case TxTransfer:
		return execTransferTx(store, b, tx, gasBudget)
	case TxCreateToken:
		return execCreateToken(store, b, tx, gasBudget)
	case TxTransferToken:
		return execTransferToken(store, b, tx, gasBudget)
	case TxDeployContract:
		return execDeployContract(store, b, tx, height, gasBudget)
	case TxCallContract:
		return execCallContract(store, b, tx, height, blockTime, gasBudget)
	}
	return Receipt{}, fmt.Errorf("mvm: unknown transaction kind %s", tx.Kind)
}

func execTransferTx(store *StateStore, b *Batch, tx Transaction, gasBudget uint64) (Receipt, error) {
	d, err := tx.TransferData()
	if err != nil {
		return Receipt{GasUsed: gasBudget}, err
	}
	if err := debit(store, b, tx.From, d.Value); err != nil {
		return Receipt{GasUsed: gasBudget}, err
	}
	if err := credit(store, b, d.To, d.Value); err != nil {
		return Receipt{GasUsed: gasBudget}, err
	}
	return Receipt{GasUsed: GasBaseTx}, nil
}

func execCreateToken(store *StateStore, b *Batch, tx Transaction, gasBudget uint64) (Receipt, error) {
	d, err := tx.CreateTokenData()
	if err != nil {
		return Receipt{GasUsed: gasBudget}, err
	}
	nonce, err := store.NonceOf(tx.From)
	if err != nil {
		return Receipt{}, err
	}
	addr := DeriveTokenAddress(tx.From, nonce)
	t := Token{
		Address:     addr,
		Creator:     tx.From,
		Name:        d.Name,
		Symbol:      d.Symbol,
		TotalSupply: d.TotalSupply,
		Decimals:    d.Decimals,
	}
	putToken(b, t)
	putTokenBalance(b, addr, tx.From, d.TotalSupply)
	ret := Value{Type: TypeAddress, Addr: addr}
	return Receipt{GasUsed: GasBaseTx + GasCreateToken, ReturnValue: &ret}, nil
}

func execTransferToken(store *StateStore, b *Batch, tx Transaction, gasBudget uint64) (Receipt, error) {
	d, err := tx.TransferTokenData()
	if err != nil {
		return Receipt{GasUsed: gasBudget}, err
	}
	if _, ok, err := store.GetToken(d.Token); err != nil {
		return Receipt{}, err
	} else if !ok {
		return Receipt{GasUsed: gasBudget}, ErrContractNotFound
	}
	fromBal, _, err := store.GetTokenBalance(d.Token, tx.From)
	if err != nil {
		return Receipt{}, err
	}
	if fromBal.LessThan(d.Value) {
		return Receipt{GasUsed: gasBudget}, ErrInsufficientTokenBalance
	}
	newFrom, err := fromBal.Sub(d.Value)
	if err != nil {
		return Receipt{GasUsed: gasBudget}, err
	}
	toBal, _, err := store.GetTokenBalance(d.Token, d.To)
	if err != nil {
		return Receipt{}, err
	}
	newTo, err := toBal.Add(d.Value)
	if err != nil {
		return Receipt{GasUsed: gasBudget}, err
	}
	putTokenBalance(b, d.Token, tx.From, newFrom)
	putTokenBalance(b, d.Token, d.To, newTo)
	return Receipt{GasUsed: GasBaseTx + GasTransferToken}, nil
}

func execDeployContract(store *StateStore, b *Batch, tx Transaction, height, gasBudget uint64) (Receipt, error) {
	d, err := tx.DeployContractData()
	if err != nil {
		return Receipt{GasUsed: gasBudget}, err
	}
	if err := d.Spec.Validate(); err != nil {
		return Receipt{GasUsed: gasBudget}, err
	}
	nonce, err := store.NonceOf(tx.From)
	if err != nil {
		return Receipt{}, err
	}
	addr := DeriveContractAddress(tx.From, nonce)
	header := ContractHeader{
		Address:         addr,
		Creator:         tx.From,
		Owner:           tx.From,
		LinkedToken:     d.Spec.LinkedToken,
		Spec:            d.Spec,
		DeployedAtBlock: height,
	}
	putContract(b, header)
	for _, v := range d.Spec.Variables {
		val := v.Default
		if val.Type == "" {
			val = ZeroValue(v.Type)
		}
		putVar(b, addr, v.Name, val)
	}
	ret := Value{Type: TypeAddress, Addr: addr}
	return Receipt{GasUsed: GasBaseTx + gasForDeploy(d.Spec), ReturnValue: &ret}, nil
}

func execCallContract(store *StateStore, b *Batch, tx Transaction, height, blockTime, gasBudget uint64) (Receipt, error) {
	d, err := tx.CallContractData()
	if err != nil {
		return Receipt{GasUsed: gasBudget}, err
	}
	header, ok, err := store.GetContract(d.Contract)
	if err != nil {
		return Receipt{}, err
	}
	if !ok {
		return Receipt{GasUsed: gasBudget}, ErrContractNotFound
	}
	if d.Function == "set_owner" {
		return execSetOwner(store, b, header, tx, d, gasBudget)
	}
	var fn *FunctionSpec
	for i := range header.Spec.Functions {
		if header.Spec.Functions[i].Name == d.Function {
			fn = &header.Spec.Functions[i]
			break
		}
	}
	if fn == nil && !autoMethodExists(header, d.Function) {
		return Receipt{GasUsed: gasBudget}, ErrMethodNotFound
	}

	if !d.Amount.IsZero() {
		if err := debit(store, b, tx.From, d.Amount); err != nil {
			return Receipt{GasUsed: gasBudget}, err
		}
		if err := credit(store, b, d.Contract, d.Amount); err != nil {
			return Receipt{}, err
		}
	}

	j := NewJournal(store)

	if fn == nil {
		ret, gasUsed, _, err := dispatchAutoMethod(j, header, tx.From, d.Function, d.Args, false)
		total := GasBaseTx + gasUsed
		if err != nil {
			return Receipt{GasUsed: total}, err
		}
		if err := j.Flush(b); err != nil {
			return Receipt{}, err
		}
		return Receipt{GasUsed: total, ReturnValue: ret}, nil
	}

	env := &CallEnv{
		Header:      header,
		Caller:      tx.From,
		CallValue:   d.Amount,
		Args:        d.Args,
		BlockHeight: height,
		BlockTime:   blockTime,
		Journal:     j,
	}
	limit := gasBudget - GasBaseTx
	ret, used, err := Exec(env, *fn, limit)
	if err != nil {
		return Receipt{GasUsed: GasBaseTx + used}, err
	}
	if err := j.Flush(b); err != nil {
		return Receipt{}, err
	}
	return Receipt{GasUsed: GasBaseTx + used, ReturnValue: ret}, nil
}

// execSetOwner is the reserved, auto-generated ownership transfer method
// every contract exposes, auto-generated methods note.
func execSetOwner(store *StateStore, b *Batch, header ContractHeader, tx Transaction, d CallContractData, gasBudget uint64) (Receipt, error) {
	if tx.From != header.Owner {
		return Receipt{GasUsed: gasBudget}, ErrOnlyOwner
	}
	newOwnerVal, ok := d.Args["new_owner"]
	if !ok || newOwnerVal.Type != TypeAddress {
		return Receipt{GasUsed: gasBudget}, fmt.Errorf("%w: missing new_owner argument", ErrGuardFailed)
	}
	header.Owner = newOwnerVal.Addr
	putContract(b, header)
	return Receipt{GasUsed: GasBaseTx + GasForOp(OpSet)}, nil
}
