package models

// SymbolKind distinguishes method symbols from synthesized ones
type SymbolKind int

const (
	SymbolMethod SymbolKind = iota
	SymbolCapability
	SymbolDestructor
	SymbolTypeID
)

// String returns the string representation of the symbol kind
func (k SymbolKind) String() string {
	switch k {
	case SymbolMethod:
		return "method"
	case SymbolCapability:
		return "capability"
	case SymbolDestructor:
		return "destructor"
	case SymbolTypeID:
		return "typeid"
	default:
		return "unknown"
	}
}

// Symbol is the link identity binding a proxy function to its stub
type Symbol struct {
	Kind      SymbolKind
	Module    string // module path the symbol is derived from
	Interface string // interface name
	Method    string // method name or reserved sentinel
	Name      string // external link name
	Local     string // Go identifier of the linknamed function
}

// SymbolTable holds every symbol of one interface
type SymbolTable struct {
	Module     string
	Interface  string
	Methods    []Symbol // interface methods then capability methods, in declaration order
	Destructor *Symbol  // nil when the interface has no drop semantics
	TypeID     Symbol
}

// Lookup returns the method or capability symbol for a method name
func (t *SymbolTable) Lookup(kind SymbolKind, method string) (Symbol, bool) {
	for _, s := range t.Methods {
		if s.Kind == kind && s.Method == method {
			return s, true
		}
	}
	return Symbol{}, false
}

// All returns every symbol in a stable order
func (t *SymbolTable) All() []Symbol {
	all := make([]Symbol, 0, len(t.Methods)+2)
	all = append(all, t.Methods...)
	if t.Destructor != nil {
		all = append(all, *t.Destructor)
	}
	return append(all, t.TypeID)
}
