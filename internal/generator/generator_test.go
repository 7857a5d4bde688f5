package generator

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/externgen/internal/errors"
	"github.com/toyz/externgen/internal/models"
)

func helloInterface() models.InterfaceDescription {
	return models.InterfaceDescription{
		Name:        "Hello",
		PackageName: "hello",
		ImportPath:  "example.com/hello",
		Imports:     []models.Import{{Path: DefaultExternImport}},
		Methods: []models.MethodSignature{
			{Name: "New", Params: []models.Param{{Name: "num", Type: "int"}}, Results: []string{"Self"}},
			{Name: "Hello", Receiver: "Ref[Self]", Doc: "Hello prints a greeting."},
			{Name: "Set", Receiver: "*Self", Params: []models.Param{{Name: "num", Type: "int"}}},
			{Name: "Into", Receiver: "Self", Results: []string{"int"}},
			{Name: "Absorb", Receiver: "*Self", Params: []models.Param{{Name: "other", Type: "Self"}}},
		},
	}
}

func helloImpl() *models.ImplementationBinding {
	return &models.ImplementationBinding{
		TypeName:    "HelloImpl",
		PackageName: "helloimpl",
		ImportPath:  "example.com/helloimpl",
		Interface:   helloInterface(),
		Methods: []models.BoundMethod{
			{Name: "New", Params: 1, Results: 1},
			{Name: "Hello"},
			{Name: "Set", PointerReceiver: true, Params: 1},
			{Name: "Into", Results: 1},
			{Name: "Absorb", PointerReceiver: true, Params: 1},
		},
		HasDropHook: true,
		Size:        8,
	}
}

func generateProxy(t *testing.T, desc models.InterfaceDescription) string {
	t.Helper()
	files, err := NewGenerator().GenerateInterface(&desc, "hello")
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, models.ProxyFile, files[0].Kind)
	assert.Equal(t, filepath.Join("hello", strings.ToLower(desc.Name)+"_extern_proxy.go"), files[0].FilePath)
	assert.Equal(t, models.AsmFile, files[1].Kind)
	assert.Equal(t, filepath.Join("hello", strings.ToLower(desc.Name)+"_extern_proxy.s"), files[1].FilePath)
	assertParses(t, files[0].Content)
	return files[0].Content
}

func generateStub(t *testing.T, b *models.ImplementationBinding) string {
	t.Helper()
	files, err := NewGenerator().GenerateImplementation(b, "helloimpl")
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, models.StubFile, files[0].Kind)
	assertParses(t, files[0].Content)
	return files[0].Content
}

func assertParses(t *testing.T, content string) {
	t.Helper()
	_, err := parser.ParseFile(token.NewFileSet(), "generated.go", content, parser.ParseComments)
	require.NoError(t, err, content)
}

var linkname = regexp.MustCompile(`//go:linkname (\w+) (\S+)`)

func linknames(content string) map[string]string {
	found := make(map[string]string)
	for _, m := range linkname.FindAllStringSubmatch(content, -1) {
		found[m[1]] = m[2]
	}
	return found
}

func TestNewGenerator(t *testing.T) {
	generator := NewGenerator()
	if generator == nil {
		t.Fatal("NewGenerator() returned nil")
	}
	if generator.Options().ExternImport != DefaultExternImport {
		t.Errorf("expected default extern import, got %s", generator.Options().ExternImport)
	}
}

func TestFileNames(t *testing.T) {
	g := NewGenerator()

	assert.Equal(t, "hello_extern_proxy.go", g.ProxyFileName("Hello"))
	assert.Equal(t, "key_value_store_extern_proxy.s", g.AsmFileName("KeyValueStore"))
	assert.Equal(t, "hello_impl_extern_stub.go", g.StubFileName("HelloImpl"))

	assert.True(t, g.IsGenerated("hello_extern_proxy.go"))
	assert.True(t, g.IsGenerated("hello_extern_proxy.s"))
	assert.True(t, g.IsGenerated("hello_impl_extern_stub.go"))
	assert.False(t, g.IsGenerated("hello.go"))
	assert.False(t, g.IsGenerated("hello_impl_extern_stub.s"))
}

func TestGenerateProxy(t *testing.T) {
	content := generateProxy(t, helloInterface())

	assert.True(t, strings.HasPrefix(content, "// Code generated by externgen. DO NOT EDIT.\n\npackage hello\n"))
	assert.Contains(t, content, "_ \"unsafe\"")
	assert.Contains(t, content, "type HelloProxy struct {\n\tbox extern.Box\n}")

	expected := []string{
		"func externHelloNew(num int) extern.Repr\n",
		"func externHelloHello(this *extern.Repr)\n",
		"func externHelloInto(this extern.Repr) int\n",
		"func externHelloAbsorb(this *extern.Repr, other extern.Repr)\n",
		"func externHelloDrop(this *extern.Repr)\n",
		"func externHelloTypeid() extern.TypeID\n",
		"func HelloProxyNew(num int) HelloProxy {\n\treturn HelloProxy{box: extern.Own(externHelloNew(num))}\n}",
		"// Hello prints a greeting.\nfunc (p *HelloProxy) Hello() {\n\texternHelloHello(p.box.Ref())\n}",
		"func (p *HelloProxy) Set(num int) {\n\texternHelloSet(p.box.Ref(), num)\n}",
		"func (p *HelloProxy) Into() int {\n\treturn externHelloInto(p.box.Take())\n}",
		"func (p *HelloProxy) Absorb(other *HelloProxy) {\n\texternHelloAbsorb(p.box.Ref(), other.box.Take())\n}",
		"func (p *HelloProxy) Drop() {\n\tif !p.box.Owned() {\n\t\treturn\n\t}\n\texternHelloDrop(p.box.Ref())\n\tp.box.Release()\n}",
		"func HelloProxyFromImpl[T any](v T) HelloProxy {",
		"extern.CheckImpl[T](externHelloTypeid(), \"Hello\")",
		"func HelloProxyIntoImpl[T any](p *HelloProxy) T {",
		"func HelloProxyDowncast[T any](p *HelloProxy) *T {",
	}
	for _, snippet := range expected {
		assert.Contains(t, content, snippet)
	}
	assert.Contains(t, content, "// HelloProxyNew forwards Hello.New.\nfunc HelloProxyNew(")
	assert.Contains(t, content, "return HelloProxy{box: extern.Own(extern.IntoRepr(v))}")
	assert.Contains(t, content, "return extern.As[T](p.box.Ref())")
	assert.NotContains(t, content, "func (p *HelloProxy) New(")
}

func TestGenerateStub(t *testing.T) {
	content := generateStub(t, helloImpl())

	assert.True(t, strings.HasPrefix(content, "// Code generated by externgen. DO NOT EDIT.\n\npackage helloimpl\n"))
	expected := []string{
		"const _ = extern.ReprSize - unsafe.Sizeof(*new(HelloImpl))",
		"func externHelloNew(num int) extern.Repr {\n\tvar zero HelloImpl\n\treturn extern.IntoRepr(zero.New(num))\n}",
		"func externHelloHello(this *extern.Repr) {\n\timpl := extern.As[HelloImpl](this)\n\timpl.Hello()\n}",
		"func externHelloSet(this *extern.Repr, num int) {\n\timpl := extern.As[HelloImpl](this)\n\timpl.Set(num)\n}",
		"func externHelloInto(this extern.Repr) int {\n\timpl := extern.FromRepr[HelloImpl](this)\n\treturn impl.Into()\n}",
		"func externHelloAbsorb(this *extern.Repr, other extern.Repr) {\n\timpl := extern.As[HelloImpl](this)\n\timpl.Absorb(extern.FromRepr[HelloImpl](other))\n}",
		"func externHelloDrop(this *extern.Repr) {\n\timpl := extern.As[HelloImpl](this)\n\timpl.Drop()\n\t*impl = *new(HelloImpl)\n}",
		"func externHelloTypeid() extern.TypeID {\n\treturn extern.TypeOf[HelloImpl]()\n}",
	}
	for _, snippet := range expected {
		assert.Contains(t, content, snippet)
	}
	assert.NotContains(t, content, "\"example.com/hello\"", "unused interface package import")
}

func TestDropWithoutHook(t *testing.T) {
	b := helloImpl()
	b.HasDropHook = false

	content := generateStub(t, b)
	assert.Contains(t, content, "func externHelloDrop(this *extern.Repr) {\n\timpl := extern.As[HelloImpl](this)\n\t*impl = *new(HelloImpl)\n}")
}

func TestBothSidesLinkTheSameSymbols(t *testing.T) {
	proxy := linknames(generateProxy(t, helloInterface()))
	stub := linknames(generateStub(t, helloImpl()))

	require.Len(t, proxy, 7)
	assert.Equal(t, proxy, stub)

	names := make([]string, 0, len(proxy))
	for _, name := range proxy {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		assert.True(t, strings.HasPrefix(name, "example.com/hello.__extern_v0_Hello_"), name)
	}

	table, err := Symbols(&models.InterfaceDescription{
		Name:       "Hello",
		ImportPath: "example.com/hello",
		Methods:    helloInterface().Methods,
	})
	require.NoError(t, err)
	for _, sym := range table.All() {
		assert.Equal(t, sym.Name, proxy[sym.Local])
	}
}

func TestMultipleResults(t *testing.T) {
	desc := helloInterface()
	desc.Methods = append(desc.Methods, models.MethodSignature{
		Name: "Split", Receiver: "Ref[Self]", Results: []string{"Self", "error"},
	})
	content := generateProxy(t, desc)
	assert.Contains(t, content, "func (p *HelloProxy) Split() (HelloProxy, error) {\n\tres0, res1 := externHelloSplit(p.box.Ref())\n\treturn HelloProxy{box: extern.Own(res0)}, res1\n}")

	b := helloImpl()
	b.Interface = desc
	b.Methods = append(b.Methods, models.BoundMethod{Name: "Split", Results: 2})
	stub := generateStub(t, b)
	assert.Contains(t, stub, "func externHelloSplit(this *extern.Repr) (extern.Repr, error) {\n\timpl := extern.As[HelloImpl](this)\n\tres0, res1 := impl.Split()\n\treturn extern.IntoRepr(res0), res1\n}")
}

func TestPointerForms(t *testing.T) {
	desc := helloInterface()
	desc.Methods = append(desc.Methods,
		models.MethodSignature{Name: "Raw", Receiver: "ConstPtr[Self]", Results: []string{"MutPtr[Self]"}},
		models.MethodSignature{Name: "Peek", Receiver: "MutPtr[Self]", Params: []models.Param{{Name: "other", Type: "Ref[Self]"}}},
		models.MethodSignature{Name: "Choose", Receiver: "Ref[Self]", Params: []models.Param{{Name: "other", Type: "MutPtr[Self]"}}, Results: []string{"Ref[Self]"}},
	)
	content := generateProxy(t, desc)
	assert.Contains(t, content, "func externHelloRaw(this *extern.Repr) *extern.Repr\n")
	assert.Contains(t, content, "func (p *HelloProxy) Raw() *HelloProxy {\n\treturn (*HelloProxy)(unsafe.Pointer(externHelloRaw(p.box.Ref())))\n}")
	assert.Contains(t, content, "func (p *HelloProxy) Peek(other *HelloProxy) {\n\texternHelloPeek(p.box.Ref(), other.box.Ref())\n}")
	assert.Contains(t, content, "func (p *HelloProxy) Choose(other *HelloProxy) *HelloProxy {\n\treturn (*HelloProxy)(unsafe.Pointer(externHelloChoose(p.box.Ref(), other.box.Ref())))\n}")
	assert.Contains(t, content, "\t\"unsafe\"\n")
	assert.NotContains(t, content, "_ \"unsafe\"")

	b := helloImpl()
	b.Interface = desc
	b.Methods = append(b.Methods,
		models.BoundMethod{Name: "Raw", Results: 1},
		models.BoundMethod{Name: "Peek", Params: 1},
		models.BoundMethod{Name: "Choose", Params: 1, Results: 1},
	)
	stub := generateStub(t, b)
	assert.Contains(t, stub, "func externHelloRaw(this *extern.Repr) *extern.Repr {\n\timpl := extern.As[HelloImpl](this)\n\treturn extern.ReprOf((*HelloImpl)(impl.Raw()), this)\n}")
	assert.Contains(t, stub, "func externHelloPeek(this *extern.Repr, other *extern.Repr) {\n\timpl := extern.As[HelloImpl](this)\n\timpl.Peek(extern.As[HelloImpl](other))\n}")
	assert.Contains(t, stub, "func externHelloChoose(this *extern.Repr, other *extern.Repr) *extern.Repr {\n\timpl := extern.As[HelloImpl](this)\n\treturn extern.ReprOf((*HelloImpl)(impl.Choose(extern.MutPtr[HelloImpl](extern.As[HelloImpl](other)))), this, other)\n}")
}

func TestInterfacePackageTypesAreQualified(t *testing.T) {
	desc := helloInterface()
	desc.Imports = append(desc.Imports, models.Import{Path: "io"})
	desc.Methods = append(desc.Methods, models.MethodSignature{
		Name:     "Configure",
		Receiver: "*Self",
		Params:   []models.Param{{Name: "cfg", Type: "Config"}, {Name: "w", Type: "io.Writer"}},
		Results:  []string{"[]Status", "error"},
	})

	proxy := generateProxy(t, desc)
	assert.Contains(t, proxy, "func (p *HelloProxy) Configure(cfg Config, w io.Writer) ([]Status, error) {")

	b := helloImpl()
	b.Interface = desc
	b.Methods = append(b.Methods, models.BoundMethod{Name: "Configure", PointerReceiver: true, Params: 2, Results: 2})
	stub := generateStub(t, b)
	assert.Contains(t, stub, "func externHelloConfigure(this *extern.Repr, cfg hello.Config, w io.Writer) ([]hello.Status, error) {\n\timpl := extern.As[HelloImpl](this)\n\treturn impl.Configure(cfg, w)\n}")
	assert.Contains(t, stub, "\"example.com/hello\"")
	assert.Contains(t, stub, "\"io\"")
}

func TestParameterNames(t *testing.T) {
	desc := helloInterface()
	desc.Methods = append(desc.Methods, models.MethodSignature{
		Name:     "Mix",
		Receiver: "Ref[Self]",
		Params:   []models.Param{{Type: "int"}, {Name: "p", Type: "string"}, {Name: "res0", Type: "bool"}, {Name: "result", Type: "bool"}},
	})
	content := generateProxy(t, desc)
	assert.Contains(t, content, "func (p *HelloProxy) Mix(arg0 int, arg1 string, arg2 bool, result bool) {\n\texternHelloMix(p.box.Ref(), arg0, arg1, arg2, result)\n}")
}

func TestVerificationFailureProducesNoFiles(t *testing.T) {
	desc := helloInterface()
	desc.Methods[1].Params = []models.Param{{Name: "all", Type: "[]Self"}}

	files, err := NewGenerator().GenerateInterface(&desc, "hello")
	require.Error(t, err)
	assert.Nil(t, files)
	assert.ErrorIs(t, err, errors.ErrInvalidSelfKind)

	b := helloImpl()
	b.Size = 32
	files, err = NewGenerator().GenerateImplementation(b, "helloimpl")
	require.Error(t, err)
	assert.Nil(t, files)
	assert.ErrorIs(t, err, errors.ErrSizeOverflow)
}

func TestCustomOptions(t *testing.T) {
	g := NewGeneratorWithOptions(Options{ProxySuffix: "_link", StubSuffix: "_impl_link", ExternImport: "example.com/vendored/extern"})
	desc := helloInterface()
	desc.Imports = nil
	desc.ProxyName = "Greeter"

	files, err := g.GenerateInterface(&desc, ".")
	require.NoError(t, err)
	assert.Equal(t, "hello_link.go", files[0].FilePath)
	assert.Equal(t, "hello_link.s", files[1].FilePath)
	assert.Contains(t, files[0].Content, "\"example.com/vendored/extern\"")
	assert.Contains(t, files[0].Content, "type Greeter struct {")
	assert.Contains(t, files[0].Content, "func GreeterNew(num int) Greeter {")
}
