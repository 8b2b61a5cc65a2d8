package core

// mempool.go - the pending transaction pool: strict per-sender nonce
// ordering (there is no fee market, so admission order is nonce order),
// with balance checks covering all five transaction kinds rather than
// just coin transfers.

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	logrus "github.com/sirupsen/logrus"
)

// MempoolConfig bounds pool admission.
type MempoolConfig struct {
	MaxTxs          int
	MaxTxsPerBlock  int
	BlockGasLimit   uint64
}

// Mempool holds admitted-but-unconfirmed transactions, indexed by sender
// and nonce, plus a global hash index for O(1) dedup.
type Mempool struct {
	mu     sync.Mutex
	cfg    MempoolConfig
	bySender map[Address]map[uint64]Transaction
	byHash   map[Hash]Address
}

// NewMempool creates an empty pool.
func NewMempool(cfg MempoolConfig) *Mempool {
	return &Mempool{
		cfg:      cfg,
		bySender: map[Address]map[uint64]Transaction{},
		byHash:   map[Hash]Address{},
	}
}

// Size returns the total number of pending transactions.
func (m *Mempool) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.bySender {
		n += len(s)
	}
	return n
}

// Admit validates and inserts tx, consulting store for the sender's
// confirmed nonce and balance. Each admission attempt gets a trace id for
// correlating log lines across the admission pipeline.
func (m *Mempool) Admit(store *StateStore, tx Transaction) error {
	traceID := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{"trace_id": traceID, "tx_hash": tx.Hash().Hex()})

	if err := tx.VerifySignature(); err != nil {
		log.WithError(err).Debug("mempool: rejected signature")
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, s := range m.bySender {
		total += len(s)
	}
	if total >= m.cfg.MaxTxs {
		log.Warn("mempool: full")
		return ErrMempoolFull
	}
	if _, exists := m.byHash[tx.Hash()]; exists {
		return ErrNonceAlreadyPending
	}

	confirmedNonce, err := store.NonceOf(tx.From)
	if err != nil {
		return err
	}
	pending := m.bySender[tx.From]
	if pending == nil {
		pending = map[uint64]Transaction{}
	}
	if _, ok := pending[tx.Nonce]; ok {
		return ErrNonceAlreadyPending
	}
	if tx.Nonce < confirmedNonce {
		return ErrInvalidNonce
	}
	// allow the next confirmed nonce, or extending the contiguous run of
	// already-pending nonces by exactly one.
	expected := confirmedNonce + uint64(len(pending))
	if tx.Nonce != expected {
		return ErrNonceGap
	}

	gas, err := tx.EstimatedGas()
	if err != nil {
		return err
	}
	if gas > m.cfg.BlockGasLimit {
		return ErrOversized
	}

	if err := m.checkAffordability(store, tx, pending); err != nil {
		return err
	}

	pending[tx.Nonce] = tx
	m.bySender[tx.From] = pending
	m.byHash[tx.Hash()] = tx.From
	log.Info("mempool: admitted")
	return nil
}

// checkAffordability sums the native value committed by tx and every
// already-pending transaction from the same sender against the confirmed
// balance, since none of the pending set has been applied yet.
func (m *Mempool) checkAffordability(store *StateStore, tx Transaction, pending map[uint64]Transaction) error {
	bal, err := store.BalanceOf(tx.From)
	if err != nil {
		return err
	}
	committed := ZeroU256()
	all := append([]Transaction{}, tx)
	for _, p := range pending {
		all = append(all, p)
	}
	for _, t := range all {
		cost, err := txNativeCost(t)
		if err != nil {
			return err
		}
		committed, err = committed.Add(cost)
		if err != nil {
			return err
		}
	}
	if bal.LessThan(committed) {
		return ErrInsufficientFunds
	}
	return nil
}

func txNativeCost(tx Transaction) (U256, error) {
	switch tx.Kind {
	case TxTransfer:
		d, err := tx.TransferData()
		if err != nil {
			return U256{}, err
		}
		return d.Value, nil
	case TxCallContract:
		d, err := tx.CallContractData()
		if err != nil {
			return U256{}, err
		}
		return d.Amount, nil
	default:
		return ZeroU256(), nil
	}
}

// PendingNonce returns the next nonce the pool would accept for addr:
// the confirmed nonce plus the length of its contiguous pending run.
func (m *Mempool) PendingNonce(store *StateStore, addr Address) (uint64, error) {
	confirmed, err := store.NonceOf(addr)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return confirmed + uint64(len(m.bySender[addr])), nil
}

// Remove drops a confirmed or discarded transaction from the pool.
func (m *Mempool) Remove(tx Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byHash, tx.Hash())
	if s := m.bySender[tx.From]; s != nil {
		delete(s, tx.Nonce)
		if len(s) == 0 {
			delete(m.bySender, tx.From)
		}
	}
}

// Select drains transactions for block assembly: sender by sender, each
// sender's run in ascending nonce order, until MaxTxsPerBlock or
// BlockGasLimit is reached. Senders are iterated in address order for
// determinism.
func (m *Mempool) Select() []Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	senders := make([]Address, 0, len(m.bySender))
	for a := range m.bySender {
		senders = append(senders, a)
	}
	sort.Slice(senders, func(i, j int) bool {
		return string(senders[i][:]) < string(senders[j][:])
	})

	var out []Transaction
	var gasUsed uint64
	for _, addr := range senders {
		nonces := make([]uint64, 0, len(m.bySender[addr]))
		for n := range m.bySender[addr] {
			nonces = append(nonces, n)
		}
		sort.Slice(nonces, func(i, j int) bool { return nonces[i] < nonces[j] })
		for _, n := range nonces {
			if len(out) >= m.cfg.MaxTxsPerBlock {
				return out
			}
			tx := m.bySender[addr][n]
			gas, err := tx.EstimatedGas()
			if err != nil {
				continue
			}
			if gasUsed+gas > m.cfg.BlockGasLimit {
				return out
			}
			gasUsed += gas
			out = append(out, tx)
		}
	}
	return out
}

// Snapshot returns every pending transaction for the mempool read surface.
func (m *Mempool) Snapshot() []Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Transaction
	for _, s := range m.bySender {
		for _, tx := range s {
			out = append(out, tx)
		}
	}
	return out
}
