package core

// mbi.go - the Mosh Binary Interface introspection document: a machine-
// readable description of a deployed contract's surface, derived purely
// from its ContractSpec on every request rather than persisted.

// VarDescriptor describes one readable/writable contract variable.
type VarDescriptor struct {
	Name      string  `json:"name"`
	Type      VarType `json:"type"`
	ReadPath  string  `json:"read_path"`
	WritePath string  `json:"write_path"`
}

// MapDescriptor describes one contract mapping.
type MapDescriptor struct {
	Name         string  `json:"name"`
	KeyType      VarType `json:"key_type"`
	ValueType    VarType `json:"value_type"`
	ReadOnePath  string  `json:"read_one_path"`
	ReadAllPath  string  `json:"read_all_path"`
}

// FuncDescriptor describes one callable contract function.
type FuncDescriptor struct {
	Name      string     `json:"name"`
	Modifiers []Modifier `json:"modifiers"`
	Args      []Arg      `json:"args"`
	Returns   *VarType   `json:"returns,omitempty"`
	Free      bool       `json:"free"`
	Payable   bool       `json:"payable"`
}

// MBI is the full introspection document for one deployed contract.
type MBI struct {
	Name        string           `json:"name"`
	Address     Address          `json:"address"`
	Owner       Address          `json:"owner"`
	LinkedToken *Address         `json:"linked_token,omitempty"`
	Variables   []VarDescriptor  `json:"variables"`
	Mappings    []MapDescriptor  `json:"mappings"`
	Functions   []FuncDescriptor `json:"functions"`
}

// BuildMBI derives the introspection document for a deployed contract,
// including the auto-generated getter/setter methods every declared
// variable and mapping receives.
func BuildMBI(h ContractHeader) MBI {
	doc := MBI{
		Name:        h.Spec.Name,
		Address:     h.Address,
		Owner:       h.Owner,
		LinkedToken: h.LinkedToken,
	}
	for _, v := range h.Spec.Variables {
		doc.Variables = append(doc.Variables, VarDescriptor{
			Name:      v.Name,
			Type:      v.Type,
			ReadPath:  "get_" + v.Name,
			WritePath: "set_" + v.Name,
		})
	}
	for _, m := range h.Spec.Mappings {
		doc.Mappings = append(doc.Mappings, MapDescriptor{
			Name:        m.Name,
			KeyType:     m.KeyType,
			ValueType:   m.ValType,
			ReadOnePath: "get_" + m.Name,
			ReadAllPath: "get_" + m.Name + "_all",
		})
	}
	for _, f := range h.Spec.Functions {
		doc.Functions = append(doc.Functions, FuncDescriptor{
			Name:      f.Name,
			Modifiers: f.Modifiers,
			Args:      f.Args,
			Returns:   f.Returns,
			Free:      f.has(ModView),
			Payable:   f.has(ModPayable),
		})
	}
	doc.Functions = append(doc.Functions, FuncDescriptor{
		Name:      "set_owner",
		Modifiers: []Modifier{ModOnlyOwner, ModWrite},
		Args:      []Arg{{Name: "new_owner", Type: TypeAddress}},
		Free:      false,
	})
	return doc
}
