package cli

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/utils"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	diagnostics *utils.DiagnosticSystem
	verbose     bool
}

// NewDiagnosticReporter creates a reporter writing through diagnostics
func NewDiagnosticReporter(diagnostics *utils.DiagnosticSystem) *DiagnosticReporter {
	return &DiagnosticReporter{
		diagnostics: diagnostics,
		verbose:     diagnostics.Enabled(utils.DiagnosticVerbose),
	}
}

// ReportWarning reports a non fatal problem
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	var b strings.Builder
	b.WriteString(color.New(color.FgYellow, color.Bold).Sprint("! "))
	b.WriteString(message)
	b.WriteString("\n")
	for _, s := range suggestions {
		fmt.Fprintf(&b, "  hint: %s\n", s)
	}
	r.diagnostics.RawError(b.String())
}

// ReportError provides comprehensive error reporting with user-friendly output
func (r *DiagnosticReporter) ReportError(err error) {
	var b strings.Builder
	b.WriteString("\nERROR: Code Generation Failed\n")
	b.WriteString("=============================\n\n")

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && multi.Count() > 1 {
		fmt.Fprintf(&b, "%d errors:\n\n", multi.Count())
		for i, e := range multi.Errors {
			fmt.Fprintf(&b, "[%d/%d] ", i+1, multi.Count())
			r.writeError(&b, e)
		}
	} else if stderrors.As(err, &multi) && multi.Count() == 1 {
		r.writeError(&b, multi.Errors[0])
	} else {
		r.writeError(&b, err)
	}

	r.writeFooter(&b)
	r.diagnostics.RawError(b.String())
}

func (r *DiagnosticReporter) writeError(b *strings.Builder, err error) {
	var ext errors.ExternError
	if stderrors.As(err, &ext) {
		r.writeExternError(b, ext)
		return
	}
	fmt.Fprintf(b, "Message: %s\n\n", err.Error())
}

// writeExternError reports an ExternError with full context and suggestions
func (r *DiagnosticReporter) writeExternError(b *strings.Builder, err errors.ExternError) {
	code := err.ErrorCode()
	title := errorTitle(code)
	fmt.Fprintf(b, "Type: %s (%s)\n", title, code)
	fmt.Fprintf(b, "%s\n\n", strings.Repeat("-", len(title)+len(code.String())+9))

	fmt.Fprintf(b, "Message: %s\n\n", messageOf(err))

	if r.verbose && err.Unwrap() != nil {
		fmt.Fprintf(b, "Underlying cause: %s\n\n", err.Unwrap().Error())
	}

	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(b, "Location: %s\n\n", loc)
	}

	context := err.Context()
	var verification *errors.VerificationError
	if stderrors.As(err, &verification) {
		context = withVerificationContext(context, verification)
	}
	if len(context) > 0 {
		writeContext(b, context)
	}

	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		writeSuggestions(b, suggestions)
	}

	writeRules(b, code)

	if r.verbose {
		writeErrorChain(b, err)
	}
}

// messageOf returns the message without the location prefix and cause suffix
// that Error adds
func messageOf(err errors.ExternError) string {
	var base *errors.BaseError
	if stderrors.As(err, &base) {
		return base.Message
	}
	return err.Error()
}

func withVerificationContext(context map[string]interface{}, e *errors.VerificationError) map[string]interface{} {
	merged := make(map[string]interface{}, len(context)+3)
	for k, v := range context {
		merged[k] = v
	}
	if e.Item != "" {
		merged["item"] = e.Item
	}
	if e.Method != "" {
		merged["method"] = e.Method
	}
	if e.Construct != "" {
		merged["construct"] = e.Construct
	}
	return merged
}

func errorTitle(code errors.ErrorCode) string {
	switch {
	case code.IsVerification():
		return "Verification Error"
	case code == errors.SyntaxErrorCode:
		return "Annotation Syntax Error"
	case code == errors.GenerationErrorCode, code == errors.TemplateErrorCode:
		return "Code Generation Error"
	case code == errors.FileSystemErrorCode:
		return "File System Error"
	case code == errors.ConfigurationErrorCode:
		return "Configuration Error"
	default:
		return "Unknown Error"
	}
}

// writeContext prints context information, important keys first
func writeContext(b *strings.Builder, context map[string]interface{}) {
	b.WriteString("Context:\n")

	importantKeys := []string{"item", "method", "construct", "interface", "implementation", "path"}
	printed := make(map[string]bool)
	for _, key := range importantKeys {
		if value, exists := context[key]; exists {
			fmt.Fprintf(b, "   %s: %v\n", formatContextKey(key), value)
			printed[key] = true
		}
	}

	var rest []string
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(b, "   %s: %v\n", formatContextKey(key), context[key])
	}

	b.WriteString("\n")
}

// formatContextKey formats context keys to be more readable
func formatContextKey(key string) string {
	switch key {
	case "item":
		return "Declaration"
	case "construct":
		return "Offending Construct"
	case "config_type":
		return "Configuration"
	default:
		parts := strings.Split(key, "_")
		for i, part := range parts {
			if len(part) > 0 {
				parts[i] = strings.ToUpper(part[:1]) + part[1:]
			}
		}
		return strings.Join(parts, " ")
	}
}

// writeSuggestions prints actionable suggestions
func writeSuggestions(b *strings.Builder, suggestions []string) {
	b.WriteString("Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(b, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(b, "      %s\n", line)
			}
		}
	}
	b.WriteString("\n")
}

// writeRules prints the rule a verification code enforces
func writeRules(b *strings.Builder, code errors.ErrorCode) {
	var rules []string
	switch code {
	case errors.GenericsNotAllowedCode:
		rules = []string{
			"Extern interfaces and their methods may not declare type parameters",
			"Type arguments are only accepted on AsRef and AsMut capabilities",
		}
	case errors.InvalidSelfKindCode:
		rules = []string{
			"Self may appear only as Self, *Self, extern.Ref[Self], extern.ConstPtr[Self] or extern.MutPtr[Self]",
			"Self may not be nested inside other types such as []Self or map[string]Self",
		}
	case errors.NonFFISignatureCode:
		rules = []string{"Methods must not be variadic"}
	case errors.DisallowedAssociatedItemCode:
		rules = []string{
			"Extern interfaces may contain only methods and extern capability markers",
			"Embedded interfaces and type sets are not supported",
		}
	case errors.UnsupportedCapabilityCode:
		rules = []string{
			"Supported capabilities: Send, Sync, Copy, Unpin, Sized, Clone, Default, Debug, AsRef[T], AsMut[T]",
			"Each capability may be requested once",
		}
	case errors.SizeOverflowCode:
		rules = []string{
			"An implementation must fit in extern.ReprSize bytes (two machine words)",
			"Store larger state behind a pointer, e.g. type Impl struct{ state *implState }",
		}
	case errors.BindingMismatchCode:
		rules = []string{
			"The implementation must declare every interface method with matching parameter and result counts",
			"-Module must match between the interface and the implementation annotations",
		}
	case errors.ReservedNameCode:
		rules = []string{"Method names of requested capabilities are reserved on the proxy"}
	}
	if len(rules) == 0 {
		return
	}
	b.WriteString("Rules:\n")
	for _, rule := range rules {
		fmt.Fprintf(b, "  - %s\n", rule)
	}
	b.WriteString("\n")
}

// writeErrorChain prints the chain of causes in verbose mode
func writeErrorChain(b *strings.Builder, err error) {
	cause := stderrors.Unwrap(err)
	if cause == nil {
		return
	}
	b.WriteString("Error Chain:\n")
	for level := 1; cause != nil; level++ {
		fmt.Fprintf(b, "  %d. %s\n", level, cause.Error())
		cause = stderrors.Unwrap(cause)
	}
	b.WriteString("\n")
}

func (r *DiagnosticReporter) writeFooter(b *strings.Builder) {
	b.WriteString("For more help:\n")
	if !r.verbose {
		b.WriteString("  - Run with --verbose for the full error chain\n")
	}
	b.WriteString("  - Review examples/hello for a complete interface and implementation pair\n\n")
}

// ReportSuccess reports successful generation with summary information
func (r *DiagnosticReporter) ReportSuccess(summary GenerationSummary) {
	stats := map[string]interface{}{
		"packages scanned":   summary.PackagesScanned,
		"packages annotated": summary.PackagesAnnotated,
		"interfaces":         summary.Interfaces,
		"implementations":    summary.Implementations,
		"symbols":            summary.Symbols,
		"files written":      len(summary.GeneratedFiles),
		"files unchanged":    len(summary.UnchangedFiles),
		"files removed":      len(summary.RemovedFiles),
	}
	title := "Code Generation Completed Successfully"
	if summary.Check {
		title = "Generated Code Is Up To Date"
		stats = map[string]interface{}{
			"packages scanned": summary.PackagesScanned,
			"files checked":    len(summary.UnchangedFiles),
		}
	}
	r.diagnostics.Summary(title, stats)

	if len(summary.GeneratedFiles) > 0 {
		r.diagnostics.Section("Generated files")
		r.diagnostics.Indent()
		for _, file := range summary.GeneratedFiles {
			r.diagnostics.Written(file)
		}
		r.diagnostics.Unindent()
	}
	if len(summary.RemovedFiles) > 0 {
		r.diagnostics.Section("Removed files")
		r.diagnostics.Indent()
		for _, file := range summary.RemovedFiles {
			r.diagnostics.List("%s", file)
		}
		r.diagnostics.Unindent()
	}
}

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	Check             bool
	PackagesScanned   int
	PackagesAnnotated int
	Interfaces        int
	Implementations   int
	Symbols           int
	GeneratedFiles    []string // written because missing or changed
	UnchangedFiles    []string
	RemovedFiles      []string // generated files no declaration produces anymore
	StaleFiles        []string // files a check run would have written or removed
}
