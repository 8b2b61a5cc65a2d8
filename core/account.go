package core

// account.go - accounts (balance/nonce) over the state store, using U256
// native-coin balances so arithmetic traps on overflow instead of wrapping.

import (
	"encoding/json"
	"fmt"
)

// accountRecordVersion is the version byte prefixed to persisted records so
// future schema changes can be detected on read.
const accountRecordVersion byte = 1

// Account is the balance/nonce pair tracked for every address.
type Account struct {
	Balance U256   `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

func (a Account) marshal() []byte {
	body, _ := json.Marshal(a)
	return append([]byte{accountRecordVersion}, body...)
}

func unmarshalAccount(data []byte) (Account, error) {
	if len(data) == 0 {
		return Account{}, nil
	}
	if data[0] != accountRecordVersion {
		return Account{}, fmt.Errorf("mvm: unsupported account record version %d", data[0])
	}
	var a Account
	if err := json.Unmarshal(data[1:], &a); err != nil {
		return Account{}, fmt.Errorf("mvm: decode account: %w", err)
	}
	return a, nil
}

// GetAccount returns the account for addr, or the zero-value account (an
// unopened account 's lazy-creation lifecycle) if none exists.
func (s *StateStore) GetAccount(addr Address) (Account, error) {
	data, ok, err := s.Get(accountKey(addr))
	if err != nil {
		return Account{}, err
	}
	if !ok {
		return Account{}, nil
	}
	return unmarshalAccount(data)
}

// NonceOf returns the confirmed nonce for addr.
func (s *StateStore) NonceOf(addr Address) (uint64, error) {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return 0, err
	}
	return acc.Nonce, nil
}

// BalanceOf returns the native balance for addr.
func (s *StateStore) BalanceOf(addr Address) (U256, error) {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return U256{}, err
	}
	return acc.Balance, nil
}

// putAccount stages an account write into b.
func putAccount(b *Batch, addr Address, acc Account) {
	b.Put(accountKey(addr), acc.marshal())
}

// credit adds amount to addr's balance within batch b, reading the base
// state store for the pre-batch value (batches within one tx/block are
// applied to a journal, see transition.go, so this sees a consistent view).
func credit(s *StateStore, b *Batch, addr Address, amount U256) error {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return err
	}
	newBal, err := acc.Balance.Add(amount)
	if err != nil {
		return err
	}
	acc.Balance = newBal
	putAccount(b, addr, acc)
	return nil
}

// debit subtracts amount from addr's balance, failing ErrInsufficientFunds
// if the balance would go negative.
func debit(s *StateStore, b *Batch, addr Address, amount U256) error {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return err
	}
	if acc.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	newBal, err := acc.Balance.Sub(amount)
	if err != nil {
		return err
	}
	acc.Balance = newBal
	putAccount(b, addr, acc)
	return nil
}

// bumpNonce increments addr's confirmed nonce by one.
func bumpNonce(s *StateStore, b *Batch, addr Address) error {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return err
	}
	acc.Nonce++
	putAccount(b, addr, acc)
	return nil
}
