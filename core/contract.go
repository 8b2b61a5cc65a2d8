package core

// contract.go - the declarative Mosh contract format: variables, mappings,
// functions and their bodies, plus the deploy-time limits and the
// deterministic address derivation used for both contracts and the tokens
// they link to. A contract here is a bounded JSON op tree rather than a
// compiled blob, so deployment just validates shape and persists it.

import (
	"encoding/json"
	"fmt"
)

// Deploy-time limits.
const (
	MaxVariables     = 10
	MaxMappings      = 5
	MaxFunctions     = 10
	MaxOpsPerBody    = 20
	MaxStringConst   = 256
	MaxIdentifierLen = 32
	MaxNestingDepth  = 5
)

// Modifier is one of the four function qualifiers.
type Modifier string

const (
	ModView      Modifier = "View"
	ModWrite     Modifier = "Write"
	ModPayable   Modifier = "Payable"
	ModOnlyOwner Modifier = "OnlyOwner"
)

// Variable is one declared contract-level storage slot.
type Variable struct {
	Name    string  `json:"name"`
	Type    VarType `json:"type"`
	Default Value   `json:"default"`
}

// Mapping is one declared contract-level key->value table.
type Mapping struct {
	Name     string  `json:"name"`
	KeyType  VarType `json:"key_type"`
	ValType  VarType `json:"value_type"`
}

// Arg is one function argument declaration.
type Arg struct {
	Name string  `json:"name"`
	Type VarType `json:"type"`
}

// FunctionSpec is one declared contract function.
type FunctionSpec struct {
	Name      string     `json:"name"`
	Modifiers []Modifier `json:"modifiers"`
	Args      []Arg      `json:"args"`
	Body      []Op       `json:"body"`
	Returns   *VarType   `json:"returns,omitempty"`
}

func (f FunctionSpec) has(m Modifier) bool {
	for _, x := range f.Modifiers {
		if x == m {
			return true
		}
	}
	return false
}

// ContractSpec is the full declarative contract document submitted with a
// DeployContract transaction.
type ContractSpec struct {
	Name        string         `json:"name"`
	LinkedToken *Address       `json:"linked_token,omitempty"`
	Variables   []Variable     `json:"variables"`
	Mappings    []Mapping      `json:"mappings"`
	Functions   []FunctionSpec `json:"functions"`
}

// reservedNames are identifiers a contract's variables, mappings and
// functions may never use, since they collide with auto-generated fields
// and methods every contract carries.
var reservedNames = map[string]bool{
	"owner": true, "creator": true, "token": true, "address": true,
}

// Validate enforces the declared limits and rejects collisions with
// reserved or auto-generated method names.
func (c ContractSpec) Validate() error {
	if len(c.Name) == 0 || len(c.Name) > MaxIdentifierLen {
		return fmt.Errorf("%w: contract name length", ErrSpecLimitExceeded)
	}
	if len(c.Variables) > MaxVariables {
		return fmt.Errorf("%w: too many variables", ErrSpecLimitExceeded)
	}
	if len(c.Mappings) > MaxMappings {
		return fmt.Errorf("%w: too many mappings", ErrSpecLimitExceeded)
	}
	if len(c.Functions) > MaxFunctions {
		return fmt.Errorf("%w: too many functions", ErrSpecLimitExceeded)
	}
	names := map[string]bool{}
	for _, v := range c.Variables {
		if err := checkIdentifier(v.Name); err != nil {
			return err
		}
		if !v.Type.valid() {
			return fmt.Errorf("%w: unknown variable type %s", ErrSpecLimitExceeded, v.Type)
		}
		if names[v.Name] {
			return fmt.Errorf("%w: duplicate variable %s", ErrSpecLimitExceeded, v.Name)
		}
		names[v.Name] = true
		if reservedNames[v.Name] {
			return fmt.Errorf("%w: %s is reserved", ErrSpecLimitExceeded, v.Name)
		}
		if v.Default.Type != "" && v.Default.Type != v.Type {
			return fmt.Errorf("%w: default type mismatch for %s", ErrSpecLimitExceeded, v.Name)
		}
		if v.Default.Type == TypeString && len(v.Default.Str) > MaxStringConst {
			return fmt.Errorf("%w: string constant too long", ErrSpecLimitExceeded)
		}
	}
	mapNames := map[string]bool{}
	for _, m := range c.Mappings {
		if err := checkIdentifier(m.Name); err != nil {
			return err
		}
		if !m.KeyType.valid() || !m.ValType.valid() {
			return fmt.Errorf("%w: unknown mapping type", ErrSpecLimitExceeded)
		}
		if mapNames[m.Name] || names[m.Name] {
			return fmt.Errorf("%w: duplicate name %s", ErrSpecLimitExceeded, m.Name)
		}
		mapNames[m.Name] = true
		if reservedNames[m.Name] {
			return fmt.Errorf("%w: %s is reserved", ErrSpecLimitExceeded, m.Name)
		}
	}
	fnNames := map[string]bool{}
	for _, f := range c.Functions {
		if err := checkIdentifier(f.Name); err != nil {
			return err
		}
		if fnNames[f.Name] {
			return fmt.Errorf("%w: duplicate function %s", ErrSpecLimitExceeded, f.Name)
		}
		fnNames[f.Name] = true
		if isAutoGeneratedName(f.Name, names, mapNames) {
			return fmt.Errorf("%w: %s collides with an auto-generated method", ErrSpecLimitExceeded, f.Name)
		}
		for _, a := range f.Args {
			if err := checkIdentifier(a.Name); err != nil {
				return err
			}
			if !a.Type.valid() {
				return fmt.Errorf("%w: unknown arg type", ErrSpecLimitExceeded)
			}
		}
		if len(f.Body) > MaxOpsPerBody {
			return fmt.Errorf("%w: function body too long", ErrSpecLimitExceeded)
		}
		if err := validateOps(f.Body, 0); err != nil {
			return err
		}
	}
	return nil
}

func checkIdentifier(name string) error {
	if name == "" || len(name) > MaxIdentifierLen {
		return fmt.Errorf("%w: identifier %q out of bounds", ErrSpecLimitExceeded, name)
	}
	return nil
}

func isAutoGeneratedName(name string, varNames, mapNames map[string]bool) bool {
	if name == "set_owner" {
		return false // explicitly allowed to be re-targeted by ownership transfer
	}
	for v := range varNames {
		if name == "get_"+v || name == "set_"+v {
			return true
		}
	}
	for m := range mapNames {
		if name == "get_"+m || name == "set_"+m {
			return true
		}
	}
	return false
}

func validateOps(ops []Op, depth int) error {
	if depth > MaxNestingDepth {
		return fmt.Errorf("%w: nesting too deep", ErrSpecLimitExceeded)
	}
	for _, op := range ops {
		if op.Msg != "" && len(op.Msg) > MaxStringConst {
			return fmt.Errorf("%w: guard message too long", ErrSpecLimitExceeded)
		}
		if op.Kind == OpIf {
			if err := validateOps(op.Then, depth+1); err != nil {
				return err
			}
			if err := validateOps(op.Else, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// ContractHeader is the persisted runtime header for a deployed contract.
type ContractHeader struct {
	Address        Address      `json:"address"`
	Creator        Address      `json:"creator"`
	Owner          Address      `json:"owner"`
	LinkedToken    *Address     `json:"linked_token,omitempty"`
	Spec           ContractSpec `json:"spec"`
	DeployedAtBlock uint64      `json:"deployed_at_block"`
}

const contractRecordVersion byte = 1

func (h ContractHeader) marshal() []byte {
	body, _ := json.Marshal(h)
	return append([]byte{contractRecordVersion}, body...)
}

func unmarshalContractHeader(data []byte) (ContractHeader, error) {
	if len(data) == 0 || data[0] != contractRecordVersion {
		return ContractHeader{}, fmt.Errorf("mvm: bad contract record")
	}
	var h ContractHeader
	if err := json.Unmarshal(data[1:], &h); err != nil {
		return ContractHeader{}, err
	}
	return h, nil
}

// DeriveContractAddress computes H("contract" || creator || creator.nonce)
// truncated to 20 bytes, 
func DeriveContractAddress(creator Address, creatorNonce uint64) Address {
	h := HashBytes([]byte("contract"), creator[:], beUint64(creatorNonce))
	var out Address
	copy(out[:], h[:20])
	return out
}

// DeriveTokenAddress computes H("token" || creator || creator.nonce)
// truncated to 20 bytes, 
func DeriveTokenAddress(creator Address, creatorNonce uint64) Address {
	h := HashBytes([]byte("token"), creator[:], beUint64(creatorNonce))
	var out Address
	copy(out[:], h[:20])
	return out
}

//---------------------------------------------------------------------
// State store access for contracts, variables and mappings
//---------------------------------------------------------------------

func (s *StateStore) GetContract(addr Address) (ContractHeader, bool, error) {
	data, ok, err := s.Get(contractKey(addr))
	if err != nil || !ok {
		return ContractHeader{}, ok, err
	}
	h, err := unmarshalContractHeader(data)
	return h, true, err
}

func putContract(b *Batch, h ContractHeader) {
	b.Put(contractKey(h.Address), h.marshal())
}

func (s *StateStore) GetVar(contract Address, name string) (Value, bool, error) {
	data, ok, err := s.Get(cvarKey(contract, name))
	if err != nil || !ok {
		return Value{}, ok, err
	}
	v, err := unmarshalValue(data)
	return v, true, err
}

func putVar(b *Batch, contract Address, name string, v Value) {
	b.Put(cvarKey(contract, name), v.marshal())
}

func (s *StateStore) GetMapCell(contract Address, mapping, key string) (Value, bool, error) {
	data, ok, err := s.Get(cmapKey(contract, mapping, key))
	if err != nil || !ok {
		return Value{}, ok, err
	}
	v, err := unmarshalValue(data)
	return v, true, err
}

func putMapCell(b *Batch, contract Address, mapping, key string, v Value) {
	b.Put(cmapKey(contract, mapping, key), v.marshal())
}
