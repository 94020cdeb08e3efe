package resolve

import (
	"errors"
	"testing"

	"github.com/rthomasv3/Galdr/codec"
	"github.com/rthomasv3/Galdr/provider"
	"github.com/rthomasv3/Galdr/registry"
)

type greeter struct {
	prefix string
}

type payload struct {
	Text  string
	Count int
}

func newFixture() (*codec.Registry, *provider.Provider) {
	codecs := codec.NewRegistry()
	codec.RegisterObject(codecs,
		codec.Prop("text", func(p *payload) string { return p.Text }, func(p *payload, v string) { p.Text = v }),
		codec.Prop("count", func(p *payload) int { return p.Count }, func(p *payload, v int) { p.Count = v }),
	)
	prov := provider.New()
	provider.RegisterSingleton(prov, &greeter{prefix: "hi"})
	return codecs, prov
}

func TestWireParams(t *testing.T) {
	codecs, prov := newFixture()
	r := New(codecs, prov)

	specs := []registry.ParamSpec{registry.Arg[string]("name"), registry.Arg[int]("count")}
	args, err := r.Resolve(specs, []byte(`{"name":"World","count":3}`))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if args[0].(string) != "World" || args[1].(int) != 3 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestCapabilityParam(t *testing.T) {
	codecs, prov := newFixture()
	r := New(codecs, prov)

	// The capability parameter resolves from the provider even though the
	// payload has no matching field.
	specs := []registry.ParamSpec{registry.Capability[*greeter](), registry.Arg[string]("name")}
	args, err := r.Resolve(specs, []byte(`{"name":"World"}`))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	g, ok := args[0].(*greeter)
	if !ok || g.prefix != "hi" {
		t.Fatalf("expect singleton greeter, got %v", args[0])
	}
	if args[1].(string) != "World" {
		t.Fatalf("unexpected wire arg: %v", args[1])
	}
}

func TestInterleavedCapabilities(t *testing.T) {
	codecs, prov := newFixture()
	provider.RegisterSingleton(prov, 99) // an int singleton, resolvable by type
	r := New(codecs, prov)

	specs := []registry.ParamSpec{
		registry.Arg[string]("a"),
		registry.Capability[*greeter](),
		registry.Arg[string]("b"),
	}
	args, err := r.Resolve(specs, []byte(`{"a":"1","b":"2"}`))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if args[0].(string) != "1" || args[2].(string) != "2" {
		t.Fatalf("unexpected wire args: %v", args)
	}
	if _, ok := args[1].(*greeter); !ok {
		t.Fatalf("expect greeter in the middle, got %v", args[1])
	}
}

func TestMissingCapability(t *testing.T) {
	codecs, _ := newFixture()
	r := New(codecs, provider.New())

	specs := []registry.ParamSpec{registry.Capability[*greeter]()}
	if _, err := r.Resolve(specs, nil); err == nil {
		t.Fatal("expect error for unregistered capability")
	}
}

func TestProviderFallbackForAbsentField(t *testing.T) {
	codecs, prov := newFixture()
	r := New(codecs, prov)

	// A wire-declared parameter whose type is registered with the provider
	// falls back to the provider when the payload lacks the field.
	specs := []registry.ParamSpec{registry.Arg[*greeter]("svc")}
	args, err := r.Resolve(specs, []byte(`{"other":1}`))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if g, ok := args[0].(*greeter); !ok || g.prefix != "hi" {
		t.Fatalf("expect provider fallback, got %v", args[0])
	}
}

func TestWholePayloadBodyParam(t *testing.T) {
	codecs, prov := newFixture()
	r := New(codecs, prov)

	// A complex parameter that is not itself a named field decodes from the
	// entire payload object.
	specs := []registry.ParamSpec{registry.Arg[payload]("body")}
	args, err := r.Resolve(specs, []byte(`{"text":"hello","count":2}`))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	p := args[0].(payload)
	if p.Text != "hello" || p.Count != 2 {
		t.Fatalf("unexpected body: %+v", p)
	}
}

func TestAbsentAndNullYieldZero(t *testing.T) {
	codecs, prov := newFixture()
	r := New(codecs, prov)

	specs := []registry.ParamSpec{registry.Arg[int]("n"), registry.Arg[string]("s")}

	args, err := r.Resolve(specs, []byte(`{}`))
	if err != nil {
		t.Fatalf("Resolve with empty payload failed: %v", err)
	}
	if args[0].(int) != 0 || args[1].(string) != "" {
		t.Fatalf("expect zero values, got %v", args)
	}

	args, err = r.Resolve(specs, []byte(`{"n":null,"s":null}`))
	if err != nil {
		t.Fatalf("Resolve with null fields failed: %v", err)
	}
	if args[0].(int) != 0 || args[1].(string) != "" {
		t.Fatalf("expect zero values for nulls, got %v", args)
	}

	args, err = r.Resolve(specs, nil)
	if err != nil {
		t.Fatalf("Resolve with nil payload failed: %v", err)
	}
	if args[0].(int) != 0 {
		t.Fatalf("expect zero values for nil payload, got %v", args)
	}
}

func TestConversionErrorNamesParam(t *testing.T) {
	codecs, prov := newFixture()
	r := New(codecs, prov)

	specs := []registry.ParamSpec{registry.Arg[int]("count")}
	_, err := r.Resolve(specs, []byte(`{"count":"not a number"}`))
	if err == nil {
		t.Fatal("expect conversion error")
	}
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expect *ConversionError, got %T", err)
	}
	if convErr.Param != "count" {
		t.Errorf("expect param 'count', got %q", convErr.Param)
	}
	if convErr.Type != codec.TypeOf[int]() {
		t.Errorf("expect target type int, got %s", convErr.Type)
	}
}
