package core

// block.go - the Block type and its chain-prefix invariants: a single
// proof-of-authority producer per height, a canonical encoding the hash
// is taken over, and the reward payouts recorded against each block.

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Payout is one reward disbursement recorded against a block.
type Payout struct {
	Recipient Address `json:"recipient"`
	Amount    U256    `json:"amount"`
}

// Block is one committed unit of the chain.
type Block struct {
	Height      uint64   `json:"height"`
	PrevHash    Hash     `json:"prev_hash"`
	TimestampMs uint64   `json:"timestamp_ms"`
	Producer    Address  `json:"producer"`
	TxHashes    []Hash   `json:"tx_hashes"`
	Payouts     []Payout `json:"reward_payouts"`
}

func (blk Block) canonicalBytes() []byte {
	var buf []byte
	h := make([]byte, 8)
	binary.BigEndian.PutUint64(h, blk.Height)
	buf = append(buf, h...)
	buf = append(buf, blk.PrevHash[:]...)
	t := make([]byte, 8)
	binary.BigEndian.PutUint64(t, blk.TimestampMs)
	buf = append(buf, t...)
	buf = append(buf, blk.Producer[:]...)
	for _, th := range blk.TxHashes {
		buf = append(buf, th[:]...)
	}
	return buf
}

// Hash is the block's content-addressed identifier.
func (blk Block) Hash() Hash { return HashBytes(blk.canonicalBytes()) }

const blockRecordVersion byte = 1

func (blk Block) marshal() []byte {
	body, _ := json.Marshal(blk)
	return append([]byte{blockRecordVersion}, body...)
}

func unmarshalBlock(data []byte) (Block, error) {
	if len(data) == 0 || data[0] != blockRecordVersion {
		return Block{}, fmt.Errorf("mvm: bad block record")
	}
	var blk Block
	if err := json.Unmarshal(data[1:], &blk); err != nil {
		return Block{}, err
	}
	return blk, nil
}

func putBlock(b *Batch, blk Block) {
	b.Put(blockKey(blk.Height), blk.marshal())
	b.Put(blockHashKey(blk.Hash()), []byte(fmt.Sprintf("%020d", blk.Height)))
}

// GetBlockByHeight returns the block at height, if committed.
func (s *StateStore) GetBlockByHeight(height uint64) (Block, bool, error) {
	data, ok, err := s.Get(blockKey(height))
	if err != nil || !ok {
		return Block{}, ok, err
	}
	blk, err := unmarshalBlock(data)
	return blk, true, err
}

// GetBlockByHash looks up a block via the hash index.
func (s *StateStore) GetBlockByHash(hash Hash) (Block, bool, error) {
	data, ok, err := s.Get(blockHashKey(hash))
	if err != nil || !ok {
		return Block{}, ok, err
	}
	var height uint64
	if _, err := fmt.Sscanf(string(data), "%020d", &height); err != nil {
		return Block{}, false, err
	}
	return s.GetBlockByHeight(height)
}

// Height returns the height of the most recently committed block.
func (s *StateStore) Height() (uint64, bool, error) {
	data, ok, err := s.Get(metaHeightKey)
	if err != nil || !ok {
		return 0, ok, err
	}
	var h uint64
	for _, c := range data {
		h = h<<8 | uint64(c)
	}
	return h, true, nil
}

func putHeight(b *Batch, height uint64) {
	b.Put(metaHeightKey, beUint64(height))
}

// RecentBlocks returns up to n of the most recently committed blocks,
// newest first.
func (s *StateStore) RecentBlocks(n int) ([]Block, error) {
	height, ok, err := s.Height()
	if err != nil || !ok {
		return nil, err
	}
	var out []Block
	for i := 0; i < n; i++ {
		if height < uint64(i) {
			break
		}
		h := height - uint64(i)
		blk, ok, err := s.GetBlockByHeight(h)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, blk)
	}
	return out, nil
}
