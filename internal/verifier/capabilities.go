package verifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/models"
)

// capabilitySpec describes one entry of the capability vocabulary
type capabilitySpec struct {
	kind   models.CapabilityKind
	arity  int
	marker string
	// methods synthesizes the forwarded signatures given the type argument
	methods func(arg string) []models.MethodSignature
}

var vocabulary = map[string]capabilitySpec{
	"Send":  {kind: models.CapabilityMarker, marker: "ExternSend"},
	"Sync":  {kind: models.CapabilityMarker, marker: "ExternSync"},
	"Copy":  {kind: models.CapabilityMarker, marker: "ExternCopy"},
	"Unpin": {kind: models.CapabilityMarker, marker: "ExternUnpin"},
	"Sized": {kind: models.CapabilityAccepted},
	"Clone": {kind: models.CapabilityDerivable, methods: func(string) []models.MethodSignature {
		return []models.MethodSignature{{Name: "Clone", Receiver: "Ref[Self]", Results: []string{"Self"}}}
	}},
	"Default": {kind: models.CapabilityDerivable, methods: func(string) []models.MethodSignature {
		return []models.MethodSignature{{Name: "Default", Results: []string{"Self"}}}
	}},
	"Debug": {kind: models.CapabilityDerivable, methods: func(string) []models.MethodSignature {
		return []models.MethodSignature{{Name: "String", Receiver: "Ref[Self]", Results: []string{"string"}}}
	}},
	"AsRef": {kind: models.CapabilityDerivable, arity: 1, methods: func(arg string) []models.MethodSignature {
		return []models.MethodSignature{{Name: "AsRef", Receiver: "Ref[Self]", Results: []string{arg}}}
	}},
	"AsMut": {kind: models.CapabilityDerivable, arity: 1, methods: func(arg string) []models.MethodSignature {
		return []models.MethodSignature{{Name: "AsMut", Receiver: "*Self", Results: []string{"*" + arg}}}
	}},
}

// Vocabulary returns the supported capability names in sorted order
func Vocabulary() []string {
	names := make([]string, 0, len(vocabulary))
	for name := range vocabulary {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsCapability reports whether name belongs to the capability vocabulary
func IsCapability(name string) bool {
	_, ok := vocabulary[name]
	return ok
}

// ResolveCapabilities checks every requested capability against the vocabulary and
// returns them in request order. Every rejected request is reported.
func ResolveCapabilities(desc *models.InterfaceDescription) ([]models.Capability, error) {
	errs := errors.NewMultipleErrors()
	seen := make(map[string]bool, len(desc.Capabilities))
	resolved := make([]models.Capability, 0, len(desc.Capabilities))

	for _, req := range desc.Capabilities {
		capability, err := resolveCapability(desc.Name, req, seen)
		if err != nil {
			errs.Add(err.WithLocation(req.Location))
			continue
		}
		resolved = append(resolved, capability)
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func resolveCapability(item string, req models.CapabilityRequest, seen map[string]bool) (models.Capability, *errors.VerificationError) {
	token := req.Token
	if token == "" {
		token = req.Name
		if len(req.Args) > 0 {
			token += "[" + strings.Join(req.Args, ", ") + "]"
		}
	}

	spec, ok := vocabulary[req.Name]
	if !ok {
		return models.Capability{}, errors.NewUnsupportedCapability(item, token, "not a known capability")
	}
	if len(req.Args) != spec.arity {
		return models.Capability{}, errors.NewUnsupportedCapability(item, token,
			fmt.Sprintf("%s takes %d type argument(s), got %d", req.Name, spec.arity, len(req.Args)))
	}
	if seen[req.Name] {
		return models.Capability{}, errors.NewUnsupportedCapability(item, token, "requested more than once")
	}
	seen[req.Name] = true

	capability := models.Capability{
		Name:    req.Name,
		Kind:    spec.kind,
		Marker:  spec.marker,
		Request: req,
	}
	if spec.arity == 1 {
		arg := req.Args[0]
		kind, valid, err := ClassifySelf(arg)
		switch {
		case err != nil:
			return models.Capability{}, errors.NewUnsupportedCapability(item, token, err.Error())
		case !valid || kind.IsSelf():
			return models.Capability{}, errors.NewUnsupportedCapability(item, token, "the type argument may not mention Self")
		}
		capability.TypeArg = arg
	}
	if spec.methods != nil {
		capability.Methods = spec.methods(capability.TypeArg)
		for i := range capability.Methods {
			capability.Methods[i].Location = req.Location
		}
	}
	return capability, nil
}

// reservedNames maps generated proxy members to what generates them
func reservedNames(capabilities []models.Capability) map[string]string {
	reserved := map[string]string{
		"Drop":     "destructor",
		"FromImpl": "FromImpl constructor",
		"IntoImpl": "IntoImpl conversion",
		"Downcast": "Downcast accessor",
	}
	for _, spec := range vocabulary {
		if spec.marker != "" {
			reserved[spec.marker] = "marker method"
		}
	}
	for _, c := range capabilities {
		for _, m := range c.Methods {
			reserved[m.Name] = c.Name + " capability method"
		}
	}
	return reserved
}
