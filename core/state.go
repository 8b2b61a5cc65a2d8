package core

// state.go - the typed state store, backed by an ordered key-value engine
// (goleveldb) rather than an in-memory map, so prefix scans enumerate in
// key order and a block's writes can commit as one atomic batch.

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
	logrus "github.com/sirupsen/logrus"
)

// Key-space tags, one ASCII byte each, partitioning the flat key-value
// store into disjoint record families.
const (
	tagAccount   = 'a'
	tagBlock     = 'b'
	tagBlockHash = 'h'
	tagTx        = 't'
	tagTxByAddr  = 'x'
	tagToken     = 'k'
	tagTokenBal  = 'y'
	tagContract  = 'c'
	tagCVar      = 'v'
	tagCMap      = 'm'
	tagEvent     = 'e'
	tagMeta      = 'p'
	tagService   = 's'
)

// StateStore is the typed facade over the ordered key-value engine. All
// reads are lock-free snapshot reads; all writes go through a Batch so a
// transaction's (or a block's) writes land atomically or not at all.
type StateStore struct {
	db *leveldb.DB
}

// OpenStateStore opens (creating if absent) the leveldb database at dir.
func OpenStateStore(dir string) (*StateStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("mvm: open state store: %w", err)
	}
	return &StateStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *StateStore) Close() error { return s.db.Close() }

// Batch accumulates writes for atomic commit: every write produced while
// applying one transaction or one block lands together or not at all.
type Batch struct {
	b *leveldb.Batch
}

// NewBatch starts a new, empty write batch.
func (s *StateStore) NewBatch() *Batch { return &Batch{b: new(leveldb.Batch)} }

func (b *Batch) Put(key, value []byte) { b.b.Put(key, value) }
func (b *Batch) Delete(key []byte)     { b.b.Delete(key) }

// Len reports how many operations are queued in the batch.
func (b *Batch) Len() int { return b.b.Len() }

// Commit writes the batch atomically. A batch that fails to commit leaves
// the store untouched - there is no partial application.
func (s *StateStore) Commit(b *Batch) error {
	if b == nil || b.b.Len() == 0 {
		return nil
	}
	if err := s.db.Write(b.b, nil); err != nil {
		logrus.WithError(err).Error("state store: commit failed")
		return fmt.Errorf("mvm: commit batch: %w", err)
	}
	return nil
}

// Get reads a single value; ok is false if the key is absent.
func (s *StateStore) Get(key []byte) (value []byte, ok bool, err error) {
	v, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Has reports whether key is present.
func (s *StateStore) Has(key []byte) (bool, error) {
	return s.db.Has(key, nil)
}

// Iterator returns an ordered iterator over keys sharing prefix, used for
// every "list X" / "all mapping entries" read operation.
func (s *StateStore) Iterator(prefix []byte) iterator.Iterator {
	return s.db.NewIterator(util.BytesPrefix(prefix), nil)
}

//---------------------------------------------------------------------
// Key builders
//---------------------------------------------------------------------

func accountKey(a Address) []byte    { return append([]byte{tagAccount}, a[:]...) }
func blockKey(height uint64) []byte  { return append([]byte{tagBlock}, beUint64(height)...) }
func blockHashKey(h Hash) []byte     { return append([]byte{tagBlockHash}, h[:]...) }
func txKey(h Hash) []byte            { return append([]byte{tagTx}, h[:]...) }
func txByAddrPrefix(a Address) []byte {
	return append([]byte{tagTxByAddr}, a[:]...)
}
func txByAddrKey(a Address, seq uint64) []byte {
	k := append([]byte{tagTxByAddr}, a[:]...)
	return append(k, beUint64(seq)...)
}
func tokenKey(a Address) []byte { return append([]byte{tagToken}, a[:]...) }
func tokenBalPrefix(token Address) []byte {
	return append([]byte{tagTokenBal}, token[:]...)
}
func tokenBalKey(token, holder Address) []byte {
	k := append([]byte{tagTokenBal}, token[:]...)
	return append(k, holder[:]...)
}
func contractKey(a Address) []byte { return append([]byte{tagContract}, a[:]...) }
func cvarKey(contract Address, name string) []byte {
	k := append([]byte{tagCVar}, contract[:]...)
	return append(k, []byte(name)...)
}
func cmapPrefix(contract Address, name string) []byte {
	k := append([]byte{tagCMap}, contract[:]...)
	return append(k, []byte(name+"/")...)
}
func cmapKey(contract Address, name, key string) []byte {
	k := cmapPrefix(contract, name)
	return append(k, []byte(key)...)
}
func eventPrefix(contract Address) []byte {
	return append([]byte{tagEvent}, contract[:]...)
}
func eventKey(contract Address, seq uint64) []byte {
	k := append([]byte{tagEvent}, contract[:]...)
	return append(k, beUint64(seq)...)
}

var (
	metaHeightKey   = []byte{tagMeta, 'h'}
	metaProducerKey = []byte{tagMeta, 'p'}
	metaChainIDKey  = []byte{tagMeta, 'c'}
)

func serviceActivityKey(a Address) []byte { return append([]byte{tagService}, a[:]...) }
func serviceActivityPrefix() []byte       { return []byte{tagService} }

func beUint64(n uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}
