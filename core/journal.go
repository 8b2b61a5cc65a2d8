package core

// journal.go - the per-call overlay that the Mosh VM reads and writes
// through while executing a single CallContract/DeployContract invocation.
// It is either flushed into the block's outer Batch on success or simply
// dropped on failure, so a faulted execution leaves no trace of the state
// writes it made up to the fault.
//
// The overlay only covers what VM opcodes touch (contract vars, mapping
// cells, token balances, the contract header, and emitted events). Gas
// accounting and the sender's nonce bump happen outside the journal in
// transition.go, since those apply unconditionally regardless of whether
// execution faults.

import "fmt"

type varKeyT struct {
	contract Address
	name     string
}

type mapKeyT struct {
	contract Address
	mapping  string
	cell     string
}

type tokenBalKeyT struct {
	token  Address
	holder Address
}

// Journal buffers reads-through-writes for one contract invocation.
type Journal struct {
	store *StateStore

	vars    map[varKeyT]Value
	varSet  map[varKeyT]bool

	cells   map[mapKeyT]Value
	cellSet map[mapKeyT]bool

	headers   map[Address]ContractHeader
	headerSet map[Address]bool

	tokenBal    map[tokenBalKeyT]U256
	tokenBalSet map[tokenBalKeyT]bool

	tokens    map[Address]Token
	tokenSet  map[Address]bool

	events []Event
}

// NewJournal opens an overlay reading through to store.
func NewJournal(store *StateStore) *Journal {
	return &Journal{
		store:       store,
		vars:        map[varKeyT]Value{},
		varSet:      map[varKeyT]bool{},
		cells:       map[mapKeyT]Value{},
		cellSet:     map[mapKeyT]bool{},
		headers:     map[Address]ContractHeader{},
		headerSet:   map[Address]bool{},
		tokenBal:    map[tokenBalKeyT]U256{},
		tokenBalSet: map[tokenBalKeyT]bool{},
		tokens:      map[Address]Token{},
		tokenSet:    map[Address]bool{},
	}
}

// GetVar reads a contract variable, preferring this invocation's own prior
// write over the committed store value.
func (j *Journal) GetVar(contract Address, name string) (Value, bool, error) {
	k := varKeyT{contract, name}
	if j.varSet[k] {
		return j.vars[k], true, nil
	}
	return j.store.GetVar(contract, name)
}

func (j *Journal) SetVar(contract Address, name string, v Value) {
	k := varKeyT{contract, name}
	j.vars[k] = v
	j.varSet[k] = true
}

func (j *Journal) GetMapCell(contract Address, mapping, cell string) (Value, bool, error) {
	k := mapKeyT{contract, mapping, cell}
	if j.cellSet[k] {
		return j.cells[k], true, nil
	}
	return j.store.GetMapCell(contract, mapping, cell)
}

func (j *Journal) SetMapCell(contract Address, mapping, cell string, v Value) {
	k := mapKeyT{contract, mapping, cell}
	j.cells[k] = v
	j.cellSet[k] = true
}

func (j *Journal) GetContractHeader(addr Address) (ContractHeader, bool, error) {
	if j.headerSet[addr] {
		return j.headers[addr], true, nil
	}
	return j.store.GetContract(addr)
}

func (j *Journal) SetContractHeader(h ContractHeader) {
	j.headers[h.Address] = h
	j.headerSet[h.Address] = true
}

func (j *Journal) GetTokenBalance(token, holder Address) (U256, error) {
	k := tokenBalKeyT{token, holder}
	if j.tokenBalSet[k] {
		return j.tokenBal[k], nil
	}
	bal, _, err := j.store.GetTokenBalance(token, holder)
	return bal, err
}

func (j *Journal) SetTokenBalance(token, holder Address, bal U256) {
	k := tokenBalKeyT{token, holder}
	j.tokenBal[k] = bal
	j.tokenBalSet[k] = true
}

func (j *Journal) GetToken(addr Address) (Token, bool, error) {
	if j.tokenSet[addr] {
		return j.tokens[addr], true, nil
	}
	return j.store.GetToken(addr)
}

func (j *Journal) SetToken(t Token) {
	j.tokens[t.Address] = t
	j.tokenSet[t.Address] = true
}

// Emit records an event to be attached to the receipt and flushed to the
// store only if the call that produced it ultimately succeeds.
func (j *Journal) Emit(e Event) { j.events = append(j.events, e) }

// Events returns the events recorded so far, in emission order.
func (j *Journal) Events() []Event { return j.events }

// Flush stages every overlay write into b. Called only on successful
// execution; a failed execution simply drops the journal and touches b
// through none of these paths.
func (j *Journal) Flush(b *Batch) error {
	for k, v := range j.vars {
		if !j.varSet[k] {
			continue
		}
		putVar(b, k.contract, k.name, v)
	}
	for k, v := range j.cells {
		if !j.cellSet[k] {
			continue
		}
		putMapCell(b, k.contract, k.mapping, k.cell, v)
	}
	for addr, h := range j.headers {
		if !j.headerSet[addr] {
			continue
		}
		putContract(b, h)
	}
	for k, bal := range j.tokenBal {
		if !j.tokenBalSet[k] {
			continue
		}
		putTokenBalance(b, k.token, k.holder, bal)
	}
	for addr, t := range j.tokens {
		if !j.tokenSet[addr] {
			continue
		}
		putToken(b, t)
	}
	if len(j.events) > 0 {
		if err := appendEvents(j.store, b, j.events); err != nil {
			return fmt.Errorf("mvm: flush events: %w", err)
		}
	}
	return nil
}
