package core

// chain.go - the proof-of-authority block production loop: a ticker-driven
// goroutine, cancelled via context.Context, producing at most one block per
// tick from a single fixed-cadence authority producer.

import (
	"context"
	"fmt"
	"time"

	logrus "github.com/sirupsen/logrus"
)

// BlockReward is the fixed native-coin reward minted per block, 10 MVM in
// the native smallest unit.
var BlockReward = NewU256(10)

const (
	producerShareNum = 70
	serviceShareNum  = 30
	shareDenom       = 100
)

// top-3 service-node split weights, summing to 100.
var serviceSplitWeights = [3]uint64{50, 33, 17}

// Subscriber receives chain notifications as blocks and transactions
// are committed.
type Subscriber interface {
	OnNewBlock(Block)
	OnNewTransaction(Transaction, Receipt)
}

// Chain drives block production against a store and mempool.
type Chain struct {
	store    *StateStore
	mempool  *Mempool
	producer Address
	interval time.Duration
	subs     []Subscriber
}

// NewChain wires a producer loop for the given authority address.
func NewChain(store *StateStore, mempool *Mempool, producer Address, interval time.Duration) *Chain {
	return &Chain{store: store, mempool: mempool, producer: producer, interval: interval}
}

// Subscribe registers a notification sink for every future committed block.
func (c *Chain) Subscribe(s Subscriber) { c.subs = append(c.subs, s) }

// Run drives the ticker loop until ctx is cancelled. Only one tick is ever
// in flight; a slow tick simply delays the next one rather than overlapping.
func (c *Chain) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logrus.Info("chain: producer loop stopped")
			return
		case <-ticker.C:
			if err := c.produceBlock(); err != nil {
				logrus.WithError(err).Error("chain: block production failed")
			}
		}
	}
}

func (c *Chain) produceBlock() error {
	height, ok, err := c.store.Height()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("mvm: chain not bootstrapped")
	}
	prevBlock, ok, err := c.store.GetBlockByHeight(height)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("mvm: missing block at height %d", height)
	}

	nextHeight := height + 1
	now := uint64(time.Now().UnixMilli())
	if now <= prevBlock.TimestampMs {
		now = prevBlock.TimestampMs + 1
	}

	txs := c.mempool.Select()
	b := c.store.NewBatch()

	var hashes []Hash
	var receipts []Receipt
	for _, tx := range txs {
		receipt, err := ApplyTransaction(c.store, b, tx, nextHeight, now)
		if err != nil {
			return err
		}
		hashes = append(hashes, tx.Hash())
		receipts = append(receipts, receipt)
	}

	payouts, err := c.computePayouts(b)
	if err != nil {
		return err
	}

	blk := Block{
		Height:      nextHeight,
		PrevHash:    prevBlock.Hash(),
		TimestampMs: now,
		Producer:    c.producer,
		TxHashes:    hashes,
		Payouts:     payouts,
	}
	putBlock(b, blk)
	putHeight(b, nextHeight)

	if err := c.store.Commit(b); err != nil {
		return err
	}
	for _, tx := range txs {
		c.mempool.Remove(tx)
	}

	logrus.WithFields(logrus.Fields{
		"height": nextHeight,
		"txs":    len(txs),
		"hash":   blk.Hash().Short(),
	}).Info("chain: block committed")

	for i, tx := range txs {
		for _, sub := range c.subs {
			sub.OnNewTransaction(tx, receipts[i])
		}
	}
	for _, sub := range c.subs {
		sub.OnNewBlock(blk)
	}
	return nil
}

// computePayouts mints BlockReward, pays 70% to the producer outright and
// splits the remaining 30% 50/33/17 across the top-3 service nodes by
// activity. Surplus from fewer than 3 candidates rolls back to the
// producer.
func (c *Chain) computePayouts(b *Batch) ([]Payout, error) {
	producerShare, err := BlockReward.Mul(NewU256(producerShareNum))
	if err != nil {
		return nil, err
	}
	producerShare, err = producerShare.Div(NewU256(shareDenom))
	if err != nil {
		return nil, err
	}
	serviceSharePool, err := BlockReward.Sub(producerShare)
	if err != nil {
		return nil, err
	}

	top, err := TopServiceNodes(c.store, 3)
	if err != nil {
		return nil, err
	}

	var payouts []Payout
	distributed := ZeroU256()
	for i, addr := range top {
		portion, err := serviceSharePool.Mul(NewU256(serviceSplitWeights[i]))
		if err != nil {
			return nil, err
		}
		portion, err = portion.Div(NewU256(100))
		if err != nil {
			return nil, err
		}
		if err := credit(c.store, b, addr, portion); err != nil {
			return nil, err
		}
		distributed, err = distributed.Add(portion)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, Payout{Recipient: addr, Amount: portion})
	}

	surplus, err := serviceSharePool.Sub(distributed)
	if err != nil {
		return nil, err
	}
	producerTotal, err := producerShare.Add(surplus)
	if err != nil {
		return nil, err
	}
	if err := credit(c.store, b, c.producer, producerTotal); err != nil {
		return nil, err
	}
	payouts = append([]Payout{{Recipient: c.producer, Amount: producerTotal}}, payouts...)

	for _, addr := range top {
		if err := bumpServiceActivity(c.store, b, addr); err != nil {
			return nil, err
		}
	}
	return payouts, nil
}
