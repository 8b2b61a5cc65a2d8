// Command mvmd runs a single MVM node: it opens the state store, bootstraps
// genesis if needed, and drives the proof-of-authority block production
// loop until interrupted.
package main

import (
	"context"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"
	"time"

	logrus "github.com/sirupsen/logrus"

	"mvm/core"
	"mvm/pkg/utils"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	dataDir := utils.EnvOrDefault("MVM_DATA_DIR", "./mvm-data")
	chainID := utils.EnvOrDefault("MVM_CHAIN_ID", "mvm-devnet")
	blockIntervalMs := utils.EnvOrDefaultInt("MVM_BLOCK_INTERVAL_MS", 2000)
	maxMempoolTxs := utils.EnvOrDefaultInt("MVM_MEMPOOL_MAX_TXS", 5000)
	maxTxsPerBlock := utils.EnvOrDefaultInt("MVM_MAX_TXS_PER_BLOCK", 500)
	blockGasLimit := utils.EnvOrDefaultUint64("MVM_BLOCK_GAS_LIMIT", 30_000_000)
	genesisBalance := utils.EnvOrDefault("MVM_GENESIS_BALANCE", "1000000000000")

	priv, authority, err := loadOrGenerateAuthority()
	if err != nil {
		logrus.WithError(err).Fatal("mvmd: failed to load authority key")
	}
	_ = priv // retained for future signed-block authentication, unused today

	store, err := core.OpenStateStore(dataDir)
	if err != nil {
		logrus.WithError(utils.Wrap(err, "open state store at "+dataDir)).Fatal("mvmd: startup failed")
	}
	defer store.Close()

	authBalance, err := core.ParseU256(genesisBalance)
	if err != nil {
		logrus.WithError(err).Fatal("mvmd: invalid MVM_GENESIS_BALANCE")
	}

	cfg := core.GenesisConfig{
		ChainID:            chainID,
		Authority:          authority,
		AuthorityBalance:   authBalance,
		GenesisTimestampMs: uint64(time.Now().UnixMilli()),
	}
	if err := core.Bootstrap(store, cfg); err != nil {
		logrus.WithError(err).Fatal("mvmd: genesis bootstrap failed")
	}

	mempool := core.NewMempool(core.MempoolConfig{
		MaxTxs:         maxMempoolTxs,
		MaxTxsPerBlock: maxTxsPerBlock,
		BlockGasLimit:  blockGasLimit,
	})

	chain := core.NewChain(store, mempool, authority, time.Duration(blockIntervalMs)*time.Millisecond)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.WithFields(logrus.Fields{
		"chain_id":  chainID,
		"authority": authority.String(),
		"data_dir":  dataDir,
	}).Info("mvmd: node starting")

	chain.Run(ctx)
	logrus.Info("mvmd: node stopped")
}

// loadOrGenerateAuthority reads MVM_AUTHORITY_PRIVATE_KEY (a hex-encoded
// 64-byte Ed25519 private key: seed followed by public key) if set,
// otherwise generates an ephemeral keypair - fine
// for a devnet single-node run, not for a durable deployment.
func loadOrGenerateAuthority() (core.PrivateKey, core.Address, error) {
	if hexKey := utils.EnvOrDefault("MVM_AUTHORITY_PRIVATE_KEY", ""); hexKey != "" {
		raw, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, core.Address{}, err
		}
		priv := core.PrivateKey(raw)
		pub := priv.Public().(core.PublicKey)
		return priv, core.DeriveAddress(pub), nil
	}
	priv, pub, err := core.GenerateKeypair()
	if err != nil {
		return nil, core.Address{}, err
	}
	logrus.Warn("mvmd: no MVM_AUTHORITY_PRIVATE_KEY set, generated an ephemeral authority key")
	return priv, core.DeriveAddress(pub), nil
}
