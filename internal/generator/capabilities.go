package generator

import (
	"github.com/toyz/externgen/internal/models"
	"github.com/toyz/externgen/internal/templates"
	"github.com/toyz/externgen/internal/verifier"
)

// proxyCapabilities returns the marker methods a proxy certifies and the
// assertions checking them. Derivable capabilities are forwarded as ordinary
// methods and only need an assertion when they map onto a standard interface.
func proxyCapabilities(v *verifier.VerifiedInterface, proxy string, imports *templates.ImportManager) ([]templates.MarkerData, []templates.AssertionData) {
	var markers []templates.MarkerData
	var assertions []templates.AssertionData
	target := "(*" + proxy + ")(nil)"

	for _, c := range v.Capabilities {
		switch c.Kind {
		case models.CapabilityMarker:
			markers = append(markers, templates.MarkerData{Method: c.Marker, Capability: c.Name})
			assertions = append(assertions, templates.AssertionData{Interface: externAlias + "." + c.Name, Type: target})
		case models.CapabilityDerivable:
			if c.Name == "Debug" {
				imports.AddImport("fmt")
				assertions = append(assertions, templates.AssertionData{Interface: "fmt.Stringer", Type: target})
			}
		}
	}
	return markers, assertions
}

// stubCapabilities returns the assertions an implementation must satisfy for
// the markers it certifies itself.
func stubCapabilities(v *verifier.VerifiedInterface, implType string) []templates.AssertionData {
	var assertions []templates.AssertionData
	for _, c := range v.Markers() {
		if c.Certified() {
			assertions = append(assertions, templates.AssertionData{
				Interface: externAlias + "." + c.Name,
				Type:      "(*" + implType + ")(nil)",
			})
		}
	}
	return assertions
}
