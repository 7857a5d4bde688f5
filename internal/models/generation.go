package models

// FileKind identifies a generated artifact
type FileKind int

const (
	ProxyFile FileKind = iota
	StubFile
	AsmFile
)

// String returns the string representation of the file kind
func (k FileKind) String() string {
	switch k {
	case ProxyFile:
		return "proxy"
	case StubFile:
		return "stub"
	case AsmFile:
		return "asm"
	default:
		return "unknown"
	}
}

// GeneratedFile represents one emitted source file
type GeneratedFile struct {
	Kind        FileKind
	PackageName string // package the file belongs to
	FilePath    string // path where the file should be written
	Content     string // generated content
}
