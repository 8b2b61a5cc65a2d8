package core

// token.go - the MVM-20 fungible token standard: a minted supply plus a
// per-holder balance table, addressed deterministically like a contract
// rather than identified by a hardcoded symbol, so arbitrary creator-minted
// tokens all share one lookup path. Native-coin balances are kept
// separately, in the account records of account.go.

import (
	"encoding/json"
	"fmt"
)

const tokenRecordVersion byte = 1

// Token is the persisted header for one MVM-20 token.
type Token struct {
	Address     Address `json:"address"`
	Creator     Address `json:"creator"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	TotalSupply U256    `json:"total_supply"`
	Decimals    uint8   `json:"decimals"`
}

func (t Token) marshal() []byte {
	body, _ := json.Marshal(t)
	return append([]byte{tokenRecordVersion}, body...)
}

func unmarshalToken(data []byte) (Token, error) {
	if len(data) == 0 || data[0] != tokenRecordVersion {
		return Token{}, fmt.Errorf("mvm: bad token record")
	}
	var t Token
	if err := json.Unmarshal(data[1:], &t); err != nil {
		return Token{}, err
	}
	return t, nil
}

func (s *StateStore) GetToken(addr Address) (Token, bool, error) {
	data, ok, err := s.Get(tokenKey(addr))
	if err != nil || !ok {
		return Token{}, ok, err
	}
	t, err := unmarshalToken(data)
	return t, true, err
}

func putToken(b *Batch, t Token) {
	b.Put(tokenKey(t.Address), t.marshal())
}

// GetTokenBalance returns the holder's balance of token, zero if absent.
func (s *StateStore) GetTokenBalance(token, holder Address) (U256, bool, error) {
	data, ok, err := s.Get(tokenBalKey(token, holder))
	if err != nil {
		return U256{}, false, err
	}
	if !ok {
		return ZeroU256(), false, nil
	}
	v, err := ParseU256(string(data))
	if err != nil {
		return U256{}, false, err
	}
	return v, true, nil
}

func putTokenBalance(b *Batch, token, holder Address, bal U256) {
	b.Put(tokenBalKey(token, holder), []byte(bal.String()))
}

// TokenHolders enumerates every holder of token with a non-zero balance.
func (s *StateStore) TokenHolders(token Address) ([]Address, error) {
	it := s.Iterator(tokenBalPrefix(token))
	defer it.Release()
	prefixLen := len(tokenBalPrefix(token))
	var out []Address
	for it.Next() {
		key := it.Key()
		if len(key) < prefixLen+20 {
			continue
		}
		bal, err := ParseU256(string(it.Value()))
		if err != nil {
			return nil, err
		}
		if bal.IsZero() {
			continue
		}
		var a Address
		copy(a[:], key[prefixLen:prefixLen+20])
		out = append(out, a)
	}
	return out, it.Error()
}
