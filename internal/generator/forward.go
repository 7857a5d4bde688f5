package generator

import (
	"fmt"
	"strings"

	"github.com/toyz/externgen/internal/models"
	"github.com/toyz/externgen/internal/verifier"
)

// names the generated bodies declare themselves
var reservedLocals = map[string]bool{
	"this":  true,
	"impl":  true,
	"zero":  true,
	"p":     true,
	"proxy": true,
}

// paramName returns the identifier used for a parameter on both sides
func paramName(i int, name string) string {
	if name == "" || name == "_" || reservedLocals[name] || isTemp(name) {
		return fmt.Sprintf("arg%d", i)
	}
	return name
}

// isTemp reports whether name has the shape of a result temporary
func isTemp(name string) bool {
	digits, ok := strings.CutPrefix(name, "res")
	if !ok || digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// resultList renders a result list for a function header
func resultList(results []string) string {
	switch len(results) {
	case 0:
		return ""
	case 1:
		return results[0]
	}
	return "(" + strings.Join(results, ", ") + ")"
}

// converter wraps a forwarded value of a Self result. ok is false when the value
// is returned unchanged.
type converter func(r verifier.VerifiedResult, value string) (converted string, ok bool)

// forwardBody renders the statements that call a forwarded function and return
// its results, converting Self results with convert.
func forwardBody(call string, results []verifier.VerifiedResult, convert converter) string {
	if len(results) == 0 {
		return "\t" + call + "\n"
	}

	needs := false
	for _, r := range results {
		if _, ok := convert(r, ""); ok {
			needs = true
		}
	}
	if !needs {
		return "\treturn " + call + "\n"
	}
	if len(results) == 1 {
		converted, _ := convert(results[0], call)
		return "\treturn " + converted + "\n"
	}

	names := make([]string, len(results))
	values := make([]string, len(results))
	for i, r := range results {
		names[i] = fmt.Sprintf("res%d", i)
		values[i] = names[i]
		if converted, ok := convert(r, names[i]); ok {
			values[i] = converted
		}
	}
	return fmt.Sprintf("\t%s := %s\n\treturn %s\n", strings.Join(names, ", "), call, strings.Join(values, ", "))
}

// methodDoc returns the doc comment text of a forwarded method
func methodDoc(iface string, sig verifier.VerifiedSignature, name string) string {
	if sig.Method.Doc != "" {
		return sig.Method.Doc
	}
	if sig.Capability != "" {
		return fmt.Sprintf("%s forwards the %s capability of %s.", name, sig.Capability, iface)
	}
	return fmt.Sprintf("%s forwards %s.%s.", name, iface, sig.Method.Name)
}

// byValue reports whether a kind moves the whole block
func byValue(kind models.SelfKind) bool {
	return kind == models.SelfByValue
}
