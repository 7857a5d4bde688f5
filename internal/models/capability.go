package models

// CapabilityKind tells the forwarder what a resolved capability produces
type CapabilityKind int

const (
	// CapabilityMarker adds a marker method and an assertion to the proxy
	CapabilityMarker CapabilityKind = iota
	// CapabilityDerivable adds one or more forwarded methods
	CapabilityDerivable
	// CapabilityAccepted is recognised but produces no output
	CapabilityAccepted
)

// String returns the string representation of the capability kind
func (k CapabilityKind) String() string {
	switch k {
	case CapabilityMarker:
		return "marker"
	case CapabilityDerivable:
		return "derivable"
	case CapabilityAccepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// Capability is a verified capability ready for code generation
type Capability struct {
	Name    string // vocabulary name, e.g. "Send" or "AsRef"
	Kind    CapabilityKind
	TypeArg string // type argument of AsRef / AsMut
	Marker  string // marker method name for CapabilityMarker
	// Methods are the synthesized signatures of a derivable capability.
	Methods []MethodSignature
	Request CapabilityRequest
}

// DisablesDrop reports whether the capability removes drop semantics from the proxy
func (c Capability) DisablesDrop() bool {
	return c.Name == "Copy"
}

// Certified reports whether the implementation must declare the marker itself
func (c Capability) Certified() bool {
	switch c.Name {
	case "Send", "Sync", "Copy":
		return true
	}
	return false
}
