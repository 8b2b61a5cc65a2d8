package core

// transaction.go - the five transaction kinds, their canonical signing
// digest, and admission-time signature checks. Signing uses Ed25519 over a
// fixed-field canonical encoding rather than RLP, matching the address
// derivation scheme in address.go.

import (
	"crypto/ed25519"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// TxKind enumerates the five state-transition kinds a transaction may carry.
type TxKind string

const (
	TxTransfer        TxKind = "transfer"
	TxCreateToken     TxKind = "create_token"
	TxTransferToken   TxKind = "transfer_token"
	TxDeployContract  TxKind = "deploy_contract"
	TxCallContract    TxKind = "call_contract"
)

// TransferData is the payload of a native-coin transfer.
type TransferData struct {
	To    Address `json:"to"`
	Value U256    `json:"value"`
}

// CreateTokenData is the payload of a token mint.
type CreateTokenData struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply U256   `json:"total_supply"`
	Decimals    uint8  `json:"decimals"`
}

// TransferTokenData is the payload of a token move between holders.
type TransferTokenData struct {
	Token Address `json:"token"`
	To    Address `json:"to"`
	Value U256    `json:"value"`
}

// DeployContractData is the payload of a contract deployment.
type DeployContractData struct {
	Spec ContractSpec `json:"spec"`
}

// CallContractData is the payload of a contract function invocation.
type CallContractData struct {
	Contract Address          `json:"contract"`
	Function string           `json:"function"`
	Args     map[string]Value `json:"args"`
	Amount   U256             `json:"amount"`
}

// Transaction is one signed state-transition request.
type Transaction struct {
	Kind      TxKind          `json:"kind"`
	From      Address         `json:"from"`
	Nonce     uint64          `json:"nonce"`
	Data      json.RawMessage `json:"data"`
	Signature []byte          `json:"signature"`
	PublicKey PublicKey       `json:"public_key"`
}

// canonicalBytes produces the deterministic byte sequence that is signed
// and hashed: a fixed field order with length-prefixed variable fields,
// excluding the signature itself.
func (tx Transaction) canonicalBytes() []byte {
	var buf []byte
	buf = append(buf, []byte(tx.Kind)...)
	buf = append(buf, 0)
	buf = append(buf, tx.From[:]...)
	nonceBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(nonceBuf, tx.Nonce)
	buf = append(buf, nonceBuf...)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(tx.Data)))
	buf = append(buf, lenBuf...)
	buf = append(buf, tx.Data...)
	buf = append(buf, tx.PublicKey...)
	return buf
}

// Hash is the transaction's content-addressed identifier.
func (tx Transaction) Hash() Hash {
	return HashBytes(tx.canonicalBytes())
}

// Sign signs tx with priv, setting Signature and PublicKey.
func (tx *Transaction) Sign(priv PrivateKey) {
	tx.PublicKey = priv.Public().(ed25519.PublicKey)
	tx.Signature = ed25519.Sign(ed25519.PrivateKey(priv), tx.canonicalBytes())
}

// VerifySignature checks tx's signature was produced by tx.PublicKey over
// tx.canonicalBytes, and that tx.PublicKey derives tx.From.
func (tx Transaction) VerifySignature() error {
	if len(tx.PublicKey) != ed25519.PublicKeySize {
		return ErrBadSignature
	}
	if len(tx.Signature) != ed25519.SignatureSize {
		return ErrBadSignature
	}
	if !ed25519.Verify(ed25519.PublicKey(tx.PublicKey), tx.canonicalBytes(), tx.Signature) {
		return ErrBadSignature
	}
	if DeriveAddress(tx.PublicKey) != tx.From {
		return ErrSignerMismatch
	}
	return nil
}

func (tx Transaction) TransferData() (TransferData, error) {
	var d TransferData
	err := json.Unmarshal(tx.Data, &d)
	return d, err
}

func (tx Transaction) CreateTokenData() (CreateTokenData, error) {
	var d CreateTokenData
	err := json.Unmarshal(tx.Data, &d)
	return d, err
}

func (tx Transaction) TransferTokenData() (TransferTokenData, error) {
	var d TransferTokenData
	err := json.Unmarshal(tx.Data, &d)
	return d, err
}

func (tx Transaction) DeployContractData() (DeployContractData, error) {
	var d DeployContractData
	err := json.Unmarshal(tx.Data, &d)
	return d, err
}

func (tx Transaction) CallContractData() (CallContractData, error) {
	var d CallContractData
	err := json.Unmarshal(tx.Data, &d)
	return d, err
}

// EstimatedGas returns the fixed gas cost for admission-time budgeting,
// before execution (actual opcode-by-opcode cost for deploy/call is only
// known once the declared body is inspected).
func (tx Transaction) EstimatedGas() (uint64, error) {
	switch tx.Kind {
	case TxTransfer:
		return GasBaseTx, nil
	case TxCreateToken:
		return GasBaseTx + GasCreateToken, nil
	case TxTransferToken:
		return GasBaseTx + GasTransferToken, nil
	case TxDeployContract:
		d, err := tx.DeployContractData()
		if err != nil {
			return 0, err
		}
		return GasBaseTx + gasForDeploy(d.Spec), nil
	case TxCallContract:
		return GasBaseTx + GasCallContractBase, nil
	}
	return 0, fmt.Errorf("mvm: unknown transaction kind %s", tx.Kind)
}

// TxStatus is the outcome recorded in a transaction's receipt.
type TxStatus string

const (
	StatusSuccess TxStatus = "success"
	StatusFailed  TxStatus = "failed"
)

const txRecordVersion byte = 1

// Receipt is the persisted record of an applied transaction.
type Receipt struct {
	TxHash      Hash     `json:"tx_hash"`
	BlockHeight uint64   `json:"block_height"`
	Status      TxStatus `json:"status"`
	ErrorCode   string   `json:"error_code,omitempty"`
	GasUsed     uint64   `json:"gas_used"`
	ReturnValue *Value   `json:"return_value,omitempty"`
}

// StoredTx bundles a transaction with its receipt, the persisted unit
// kept under the transaction key space.
type StoredTx struct {
	Tx      Transaction `json:"tx"`
	Receipt Receipt     `json:"receipt"`
}

func (s StoredTx) marshal() []byte {
	body, _ := json.Marshal(s)
	return append([]byte{txRecordVersion}, body...)
}

func unmarshalStoredTx(data []byte) (StoredTx, error) {
	if len(data) == 0 || data[0] != txRecordVersion {
		return StoredTx{}, fmt.Errorf("mvm: bad tx record")
	}
	var s StoredTx
	if err := json.Unmarshal(data[1:], &s); err != nil {
		return StoredTx{}, err
	}
	return s, nil
}

func (s *StateStore) GetTx(hash Hash) (StoredTx, bool, error) {
	data, ok, err := s.Get(txKey(hash))
	if err != nil || !ok {
		return StoredTx{}, ok, err
	}
	st, err := unmarshalStoredTx(data)
	return st, true, err
}

func putTx(b *Batch, st StoredTx) {
	b.Put(txKey(st.Tx.Hash()), st.marshal())
}

// indexTxByAddress records hash under addr's transaction history at the
// next free sequence number.
func indexTxByAddress(s *StateStore, b *Batch, addr Address, hash Hash) error {
	it := s.Iterator(txByAddrPrefix(addr))
	defer it.Release()
	var seq uint64
	for it.Next() {
		seq++
	}
	if err := it.Error(); err != nil {
		return err
	}
	b.Put(txByAddrKey(addr, seq), hash[:])
	return nil
}

// TxsByAddress returns every transaction hash addr appeared in, oldest first.
func (s *StateStore) TxsByAddress(addr Address) ([]Hash, error) {
	it := s.Iterator(txByAddrPrefix(addr))
	defer it.Release()
	var out []Hash
	for it.Next() {
		var h Hash
		copy(h[:], it.Value())
		out = append(out, h)
	}
	return out, it.Error()
}
