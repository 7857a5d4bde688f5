package templates

// LinkFunc is one //go:linkname function. Body is empty for pulled declarations.
type LinkFunc struct {
	Local   string
	Symbol  string
	Params  string
	Results string
	Body    string
}

// MethodData is a forwarding method or package function on the proxy
type MethodData struct {
	Doc      string
	Receiver string // empty for package functions
	Name     string
	Params   string
	Results  string
	Body     string
}

// MarkerData is a marker method certified by a proxy
type MarkerData struct {
	Method     string
	Capability string
}

// AssertionData is a compile-time interface satisfaction check
type AssertionData struct {
	Interface string
	Type      string
}

// ProxyData is the template data of a proxy file
type ProxyData struct {
	Header     string
	Package    string
	Imports    string
	Extern     string // import alias of the runtime package
	Interface  string
	Proxy      string
	Externs    []LinkFunc
	Methods    []MethodData
	Markers    []MarkerData
	Assertions []AssertionData
	Drop       string // destructor local, empty without drop semantics
	TypeID     string // type identity local
}

// StubData is the template data of a stub file
type StubData struct {
	Header        string
	Package       string
	Imports       string
	Interface     string
	Type          string
	SizeAssertion string
	Assertions    []AssertionData
	Funcs         []LinkFunc
}

// AsmData is the template data of the assembly companion of a proxy
type AsmData struct {
	Header string
	Proxy  string
}
