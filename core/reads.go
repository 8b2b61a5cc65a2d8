package core

// reads.go - the query surface exposed to clients: chain status, block/tx/
// account/token/contract/event lookups and free view calls, gathered
// behind one ReadAPI so a transport layer (HTTP, RPC) has a single
// dependency to wire against.

import "fmt"

// ChainStatus summarizes the chain's current tip.
type ChainStatus struct {
	ChainID string `json:"chain_id"`
	Height  uint64 `json:"height"`
	TipHash Hash   `json:"tip_hash"`
}

// ReadAPI answers every read-only query a client may make against the chain.
type ReadAPI struct {
	store   *StateStore
	mempool *Mempool
}

// NewReadAPI wires a read surface over store and mempool.
func NewReadAPI(store *StateStore, mempool *Mempool) *ReadAPI {
	return &ReadAPI{store: store, mempool: mempool}
}

func (r *ReadAPI) ChainStatus() (ChainStatus, error) {
	chainID, err := r.store.ChainID()
	if err != nil {
		return ChainStatus{}, err
	}
	height, ok, err := r.store.Height()
	if err != nil {
		return ChainStatus{}, err
	}
	if !ok {
		return ChainStatus{ChainID: chainID}, nil
	}
	blk, _, err := r.store.GetBlockByHeight(height)
	if err != nil {
		return ChainStatus{}, err
	}
	return ChainStatus{ChainID: chainID, Height: height, TipHash: blk.Hash()}, nil
}

func (r *ReadAPI) BlockByHeight(height uint64) (Block, bool, error) {
	return r.store.GetBlockByHeight(height)
}

func (r *ReadAPI) LatestBlock() (Block, bool, error) {
	height, ok, err := r.store.Height()
	if err != nil || !ok {
		return Block{}, ok, err
	}
	return r.store.GetBlockByHeight(height)
}

func (r *ReadAPI) RecentBlocks(n int) ([]Block, error) {
	return r.store.RecentBlocks(n)
}

func (r *ReadAPI) MempoolSnapshot() []Transaction {
	return r.mempool.Snapshot()
}

func (r *ReadAPI) TxByHash(h Hash) (StoredTx, bool, error) {
	return r.store.GetTx(h)
}

func (r *ReadAPI) TxsByAddress(addr Address) ([]StoredTx, error) {
	hashes, err := r.store.TxsByAddress(addr)
	if err != nil {
		return nil, err
	}
	out := make([]StoredTx, 0, len(hashes))
	for _, h := range hashes {
		st, ok, err := r.store.GetTx(h)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r *ReadAPI) Nonce(addr Address) (uint64, error) { return r.store.NonceOf(addr) }

func (r *ReadAPI) PendingNonce(addr Address) (uint64, error) {
	return r.mempool.PendingNonce(r.store, addr)
}

func (r *ReadAPI) AccountInfo(addr Address) (Account, error) { return r.store.GetAccount(addr) }

// WalletNew generates a fresh keypair and its derived address, for
// operators bootstrapping a new identity.
func (r *ReadAPI) WalletNew() (PrivateKey, Address, error) {
	priv, pub, err := GenerateKeypair()
	if err != nil {
		return nil, Address{}, err
	}
	return priv, DeriveAddress(pub), nil
}

// WalletNewWithMnemonic generates a fresh keypair backed by a written-down
// recovery phrase instead of a raw key file.
func (r *ReadAPI) WalletNewWithMnemonic() (PrivateKey, Address, string, error) {
	priv, pub, mnemonic, err := GenerateMnemonicKeypair()
	if err != nil {
		return nil, Address{}, "", err
	}
	return priv, DeriveAddress(pub), mnemonic, nil
}

// WalletFromMnemonic recovers a keypair and address from a previously
// issued recovery phrase.
func (r *ReadAPI) WalletFromMnemonic(mnemonic, passphrase string) (PrivateKey, Address, error) {
	priv, pub, err := KeypairFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, Address{}, err
	}
	return priv, DeriveAddress(pub), nil
}

func (r *ReadAPI) TokenInfo(addr Address) (Token, bool, error) { return r.store.GetToken(addr) }

func (r *ReadAPI) TokenBalance(token, holder Address) (U256, error) {
	bal, _, err := r.store.GetTokenBalance(token, holder)
	return bal, err
}

func (r *ReadAPI) TokenHolders(token Address) ([]Address, error) {
	return r.store.TokenHolders(token)
}

func (r *ReadAPI) ContractInfo(addr Address) (ContractHeader, bool, error) {
	return r.store.GetContract(addr)
}

func (r *ReadAPI) ContractEvents(addr Address) ([]Event, error) {
	return r.store.ContractEvents(addr)
}

// ReadVariable reads a contract's declared variable without spending gas.
func (r *ReadAPI) ReadVariable(contract Address, name string) (Value, error) {
	v, ok, err := r.store.GetVar(contract, name)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, fmt.Errorf("mvm: unknown variable %s", name)
	}
	return v, nil
}

// ReadMapEntry reads a single mapping cell without spending gas.
func (r *ReadAPI) ReadMapEntry(contract Address, mapping, key string) (Value, error) {
	v, ok, err := r.store.GetMapCell(contract, mapping, key)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return ZeroValue(TypeU256), nil
	}
	return v, nil
}

// CallView invokes a View function with zero gas and no state mutation;
// the caller's nonce does not advance.
func (r *ReadAPI) CallView(contract Address, function string, caller Address, args map[string]Value, height, blockTime uint64) (*Value, error) {
	header, ok, err := r.store.GetContract(contract)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrContractNotFound
	}
	var fn *FunctionSpec
	for i := range header.Spec.Functions {
		if header.Spec.Functions[i].Name == function {
			fn = &header.Spec.Functions[i]
		}
	}
	if fn == nil {
		ret, _, handled, err := dispatchAutoMethod(NewJournal(r.store), header, caller, function, args, true)
		if !handled {
			return nil, ErrMethodNotFound
		}
		return ret, err
	}
	if !fn.has(ModView) {
		return nil, ErrNotView
	}
	env := &CallEnv{
		Header:      header,
		Caller:      caller,
		CallValue:   ZeroU256(),
		Args:        args,
		BlockHeight: height,
		BlockTime:   blockTime,
		Journal:     NewJournal(r.store),
		View:        true,
	}
	ret, _, err := Exec(env, *fn, ^uint64(0))
	return ret, err
}

// Leaderboard returns the top-3 service nodes by current activity count.
func (r *ReadAPI) Leaderboard() ([]Address, error) {
	return TopServiceNodes(r.store, 3)
}

// WriteAPI exposes the transaction submission entry point.
type WriteAPI struct {
	mempool *Mempool
	store   *StateStore
}

func NewWriteAPI(store *StateStore, mempool *Mempool) *WriteAPI {
	return &WriteAPI{store: store, mempool: mempool}
}

// SubmitTransaction admits tx into the mempool for the next block.
func (w *WriteAPI) SubmitTransaction(tx Transaction) error {
	return w.mempool.Admit(w.store, tx)
}

// SignTransaction is a convenience helper mirroring the wallet flow: set
// the sender's current pending nonce and sign.
func (w *WriteAPI) SignTransaction(tx Transaction, priv PrivateKey) (Transaction, error) {
	nonce, err := w.mempool.PendingNonce(w.store, DeriveAddress(priv.Public().(PublicKey)))
	if err != nil {
		return Transaction{}, err
	}
	tx.Nonce = nonce
	tx.Sign(priv)
	return tx, nil
}
