package core

// genesis.go - one-time chain initialization, guarded by a persisted
// height/authority marker so restarting the node is idempotent.

import (
	"fmt"

	logrus "github.com/sirupsen/logrus"
)

// GenesisConfig seeds a brand new chain.
type GenesisConfig struct {
	ChainID         string
	Authority       Address
	AuthorityBalance U256
	GenesisTimestampMs uint64
}

// ErrAuthorityMismatch is returned by Bootstrap when an existing chain's
// recorded producer does not match cfg.Authority.
var ErrAuthorityMismatch = fmt.Errorf("mvm: genesis authority mismatch")

// Bootstrap brings store to height 0 if it is empty, or verifies an
// existing chain's authority matches cfg if it is not. It is safe to call
// on every startup.
func Bootstrap(store *StateStore, cfg GenesisConfig) error {
	height, ok, err := store.Height()
	if err != nil {
		return err
	}
	if ok {
		producer, err := currentProducer(store)
		if err != nil {
			return err
		}
		if producer != cfg.Authority {
			return ErrAuthorityMismatch
		}
		logrus.WithField("height", height).Info("genesis: resuming existing chain")
		return nil
	}

	logrus.WithField("authority", cfg.Authority.String()).Info("genesis: bootstrapping new chain")
	b := store.NewBatch()
	acc := Account{Balance: cfg.AuthorityBalance, Nonce: 0}
	putAccount(b, cfg.Authority, acc)

	genesisBlock := Block{
		Height:      0,
		PrevHash:    ZeroHash,
		TimestampMs: cfg.GenesisTimestampMs,
		Producer:    cfg.Authority,
		TxHashes:    nil,
		Payouts:     nil,
	}
	putBlock(b, genesisBlock)
	putHeight(b, 0)
	b.Put(metaProducerKey, cfg.Authority[:])
	b.Put(metaChainIDKey, []byte(cfg.ChainID))

	return store.Commit(b)
}

func currentProducer(store *StateStore) (Address, error) {
	data, ok, err := store.Get(metaProducerKey)
	if err != nil || !ok {
		return Address{}, err
	}
	var a Address
	copy(a[:], data)
	return a, nil
}

// ChainID returns the persisted chain identifier.
func (s *StateStore) ChainID() (string, error) {
	data, ok, err := s.Get(metaChainIDKey)
	if err != nil || !ok {
		return "", err
	}
	return string(data), nil
}
