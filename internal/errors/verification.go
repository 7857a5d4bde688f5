package errors

import "fmt"

// VerificationError is a compile-time diagnostic produced while checking an
// interface description or an implementation binding.
type VerificationError struct {
	*BaseError
	Item      string // interface, implementation or capability the error belongs to
	Method    string // offending method, empty for item-level failures
	Construct string // offending construct as written (type, token, parameter)
}

func newVerification(code ErrorCode, item, method, construct, message string) *VerificationError {
	return &VerificationError{
		BaseError: New(code, message),
		Item:      item,
		Method:    method,
		Construct: construct,
	}
}

// WithLocation adds location information to the error
func (e *VerificationError) WithLocation(loc SourceLocation) *VerificationError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *VerificationError) WithSuggestion(suggestion string) *VerificationError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// NewGenericsNotAllowed reports type parameters on an interface (method empty) or method
func NewGenericsNotAllowed(item, method, params string) *VerificationError {
	subject := fmt.Sprintf("interface %s", item)
	if method != "" {
		subject = fmt.Sprintf("method %s.%s", item, method)
	}
	err := newVerification(GenericsNotAllowedCode, item, method, params,
		fmt.Sprintf("%s may not have generic parameters %s", subject, params))
	err.WithSuggestion("Extern interfaces are resolved at link time; use concrete types")
	return err
}

// NewInvalidSelfKind reports a Self occurrence outside the permitted forms
func NewInvalidSelfKind(item, method, position, typeExpr string) *VerificationError {
	err := newVerification(InvalidSelfKindCode, item, method, typeExpr,
		fmt.Sprintf("method %s.%s: too complex `Self` type %q in %s", item, method, typeExpr, position))
	err.WithSuggestion("Self may appear only as Self, *Self, Ref[Self], ConstPtr[Self] or MutPtr[Self]")
	return err
}

// NewUnborrowedSelfResult reports a pointer to Self returned by a method that
// borrows no Self for it to point into
func NewUnborrowedSelfResult(item, method, typeExpr string) *VerificationError {
	err := newVerification(InvalidSelfKindCode, item, method, typeExpr,
		fmt.Sprintf("method %s.%s: result %q must point into a Self the method borrows", item, method, typeExpr))
	err.WithSuggestion("Return Self by value, or borrow the receiver as *Self or Ref[Self]")
	return err
}

// NewNonFFISignature reports a const, async or variadic method
func NewNonFFISignature(item, method, reason string) *VerificationError {
	return newVerification(NonFFISignatureCode, item, method, reason,
		fmt.Sprintf("method %s.%s: extern interfaces do not support %s methods", item, method, reason))
}

// NewDisallowedAssociatedItem reports a non-method interface member
func NewDisallowedAssociatedItem(item, construct string) *VerificationError {
	err := newVerification(DisallowedAssociatedItemCode, item, "", construct,
		fmt.Sprintf("interface %s may only contain methods, found %s", item, construct))
	err.WithSuggestion("Remove type constraints and embedded non-capability interfaces")
	return err
}

// NewUnsupportedCapability reports a capability outside the supported vocabulary
func NewUnsupportedCapability(item, token, reason string) *VerificationError {
	err := newVerification(UnsupportedCapabilityCode, item, "", token,
		fmt.Sprintf("interface %s: unsupported capability %q: %s", item, token, reason))
	err.WithSuggestion("Supported capabilities: Send, Sync, Sized, Unpin, Copy, Debug, Clone, Default, AsRef[T], AsMut[T]")
	return err
}

// NewSizeOverflow reports an implementation type larger than the Repr budget
func NewSizeOverflow(typeName string, size, limit int64) *VerificationError {
	err := newVerification(SizeOverflowCode, typeName, "", typeName,
		fmt.Sprintf("%s is too large to be used as an extern implementation (%d bytes, limit %d)", typeName, size, limit))
	err.WithSuggestion("Store large state behind a pointer so the implementation fits in two machine words")
	return err
}

// NewBindingMismatch reports an implementation that does not match the interface
func NewBindingMismatch(item, method, detail string) *VerificationError {
	return newVerification(BindingMismatchCode, item, method, detail,
		fmt.Sprintf("implementation %s: %s", item, detail))
}

// NewReservedName reports a method name that clashes with generated code
func NewReservedName(item, method, owner string) *VerificationError {
	return newVerification(ReservedNameCode, item, method, method,
		fmt.Sprintf("method %s.%s collides with the %s generated for the proxy", item, method, owner))
}

// NewInvalidType reports a type expression that does not parse
func NewInvalidType(item, method, typeExpr string, cause error) *VerificationError {
	err := newVerification(InvalidTypeCode, item, method, typeExpr,
		fmt.Sprintf("method %s.%s: invalid type %q", item, method, typeExpr))
	err.BaseError.WithCause(cause)
	return err
}

// NewDuplicateMethod reports a method declared twice in one interface
func NewDuplicateMethod(item, method string) *VerificationError {
	return newVerification(ReservedNameCode, item, method, method,
		fmt.Sprintf("method %s.%s is declared more than once", item, method))
}
