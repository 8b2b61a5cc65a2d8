package core

import (
	"context"
	"testing"
	"time"
)

func bootstrapTestChain(t *testing.T) (*StateStore, Address) {
	t.Helper()
	store := newTestStore(t)
	authorityPriv, authorityPub, _ := GenerateKeypair()
	authority := DeriveAddress(authorityPub)
	_ = authorityPriv
	cfg := GenesisConfig{ChainID: "test", Authority: authority, AuthorityBalance: NewU256(1_000_000)}
	if err := Bootstrap(store, cfg); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	return store, authority
}

func TestGenesisBootstrapIsIdempotent(t *testing.T) {
	store, authority := bootstrapTestChain(t)
	cfg := GenesisConfig{ChainID: "test", Authority: authority, AuthorityBalance: NewU256(999)}
	if err := Bootstrap(store, cfg); err != nil {
		t.Fatalf("second Bootstrap call should succeed as a resume, got %v", err)
	}
	height, ok, err := store.Height()
	if err != nil || !ok || height != 0 {
		t.Fatalf("expected height 0 after resume, got %d ok=%v err=%v", height, ok, err)
	}
}

func TestGenesisBootstrapRejectsAuthorityMismatch(t *testing.T) {
	store, _ := bootstrapTestChain(t)
	_, otherPub, _ := GenerateKeypair()
	other := DeriveAddress(otherPub)
	cfg := GenesisConfig{ChainID: "test", Authority: other, AuthorityBalance: NewU256(1)}
	if err := Bootstrap(store, cfg); err != ErrAuthorityMismatch {
		t.Fatalf("expected ErrAuthorityMismatch, got %v", err)
	}
}

func TestChainProducesBlocksWithStrictlyIncreasingHeightAndTimestamp(t *testing.T) {
	store, authority := bootstrapTestChain(t)
	mp := NewMempool(defaultMempoolConfig())
	chain := NewChain(store, mp, authority, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Millisecond)
	defer cancel()
	chain.Run(ctx)

	height, ok, err := store.Height()
	if err != nil || !ok {
		t.Fatalf("Height: ok=%v err=%v", ok, err)
	}
	if height < 1 {
		t.Fatalf("expected at least one block produced, got height %d", height)
	}

	var prev Block
	for h := uint64(0); h <= height; h++ {
		blk, ok, err := store.GetBlockByHeight(h)
		if err != nil || !ok {
			t.Fatalf("GetBlockByHeight(%d): ok=%v err=%v", h, ok, err)
		}
		if h > 0 {
			if blk.Height != prev.Height+1 {
				t.Fatalf("non-monotonic height at %d", h)
			}
			if blk.TimestampMs <= prev.TimestampMs {
				t.Fatalf("non-increasing timestamp at height %d", h)
			}
			if blk.PrevHash != prev.Hash() {
				t.Fatalf("broken hash chain at height %d", h)
			}
		}
		prev = blk
	}
}

func TestChainPaysBlockRewardToProducerWhenNoServiceNodes(t *testing.T) {
	store, authority := bootstrapTestChain(t)
	mp := NewMempool(defaultMempoolConfig())
	chain := NewChain(store, mp, authority, 15*time.Millisecond)

	before, err := store.BalanceOf(authority)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()
	chain.Run(ctx)

	after, err := store.BalanceOf(authority)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if !after.GreaterThan(before) {
		t.Fatalf("expected producer balance to grow from block rewards: before=%s after=%s", before, after)
	}
}
