package core

// event.go - the append-only per-contract event log that the `emit`
// opcode writes to: named-argument records rather than topic/data logs,
// since Mosh events carry a fixed declared shape instead of free-form
// indexed topics.

import (
	"encoding/json"
	"fmt"
)

const eventRecordVersion byte = 1

// Event is one emitted contract event.
type Event struct {
	Contract    Address          `json:"contract"`
	BlockHeight uint64           `json:"block_height"`
	TxHash      Hash             `json:"tx_hash"`
	Name        string           `json:"event_name"`
	Args        map[string]Value `json:"args"`
	LogIndex    uint64           `json:"log_index"`
}

func (e Event) marshal() []byte {
	body, _ := json.Marshal(e)
	return append([]byte{eventRecordVersion}, body...)
}

func unmarshalEvent(data []byte) (Event, error) {
	if len(data) == 0 || data[0] != eventRecordVersion {
		return Event{}, fmt.Errorf("mvm: bad event record")
	}
	var e Event
	if err := json.Unmarshal(data[1:], &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// nextEventSeq scans contract's whole event log to find the next free
// sequence number. Called once per contract per flush, not per event.
func nextEventSeq(s *StateStore, contract Address) (uint64, error) {
	it := s.Iterator(eventPrefix(contract))
	defer it.Release()
	prefixLen := len(eventPrefix(contract))
	var max uint64
	found := false
	for it.Next() {
		key := it.Key()
		if len(key) < prefixLen+8 {
			continue
		}
		var seq uint64
		for i := 0; i < 8; i++ {
			seq = seq<<8 | uint64(key[prefixLen+i])
		}
		max = seq
		found = true
	}
	if err := it.Error(); err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return max + 1, nil
}

// appendEvents stages a batch of events for contract(s), assigning
// per-contract monotonic sequence numbers.
func appendEvents(s *StateStore, b *Batch, events []Event) error {
	seqByContract := map[Address]uint64{}
	for i := range events {
		e := events[i]
		seq, ok := seqByContract[e.Contract]
		if !ok {
			var err error
			seq, err = nextEventSeq(s, e.Contract)
			if err != nil {
				return err
			}
		}
		e.LogIndex = seq
		b.Put(eventKey(e.Contract, seq), e.marshal())
		seqByContract[e.Contract] = seq + 1
	}
	return nil
}

// ContractEvents returns every event recorded for contract, oldest first.
func (s *StateStore) ContractEvents(contract Address) ([]Event, error) {
	it := s.Iterator(eventPrefix(contract))
	defer it.Release()
	var out []Event
	for it.Next() {
		e, err := unmarshalEvent(it.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, it.Error()
}
