package test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rthomasv3/Galdr/bridge"
	"github.com/rthomasv3/Galdr/codec"
	"github.com/rthomasv3/Galdr/config"
	"github.com/rthomasv3/Galdr/dispatch"
	"github.com/rthomasv3/Galdr/envelope"
	"github.com/rthomasv3/Galdr/middleware"
	"github.com/rthomasv3/Galdr/provider"
	"github.com/rthomasv3/Galdr/registry"
)

// ---- Test commands ----

type note struct {
	Title string
	Pin   bool
}

type noteStore struct {
	mu    sync.Mutex
	notes []note
}

func (s *noteStore) add(n note) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, n)
	return len(s.notes)
}

func newStack(t testing.TB) (*dispatch.Dispatcher, *noteStore) {
	t.Helper()

	codecs := codec.NewRegistry()
	codec.RegisterObject(codecs,
		codec.Prop("title", func(n *note) string { return n.Title }, func(n *note, v string) { n.Title = v }),
		codec.Prop("pin", func(n *note) bool { return n.Pin }, func(n *note, v bool) { n.Pin = v }),
	)
	codec.RegisterSlice[note](codecs)

	store := &noteStore{}
	prov := provider.New()
	provider.RegisterSingleton(prov, store)

	commands := registry.New()
	commands.Register(registry.Descriptor{
		Name: "Add",
		Params: []registry.ParamSpec{
			registry.Arg[int]("a"),
			registry.Arg[int]("b"),
		},
		Result: registry.Result[int](),
		Handler: func(ctx context.Context, args []any) (any, error) {
			return args[0].(int) + args[1].(int), nil
		},
	})
	commands.Register(registry.Descriptor{
		Name: "SaveNote",
		Params: []registry.ParamSpec{
			registry.Capability[*noteStore](),
			registry.Arg[note]("note"),
		},
		Result: registry.Result[int](),
		Handler: func(ctx context.Context, args []any) (any, error) {
			return args[0].(*noteStore).add(args[1].(note)), nil
		},
	})
	commands.Register(registry.Descriptor{
		Name: "SlowEcho",
		Params: []registry.ParamSpec{
			registry.Arg[string]("text"),
		},
		Result: registry.Result[string](),
		Handler: func(ctx context.Context, args []any) (any, error) {
			time.Sleep(50 * time.Millisecond)
			return args[0].(string), nil
		},
	})
	commands.Register(registry.Descriptor{
		Name: "Fail",
		Handler: func(ctx context.Context, args []any) (any, error) {
			return nil, fmt.Errorf("always fails")
		},
	})

	d, err := dispatch.New(dispatch.Config{
		Commands:   commands,
		Codecs:     codecs,
		Provider:   prov,
		Middleware: []middleware.Middleware{middleware.Logging(zerolog.Nop())},
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("failed to build dispatcher: %v", err)
	}
	return d, store
}

func startBridge(t testing.TB, d *dispatch.Dispatcher) *bridge.Client {
	t.Helper()

	srv := bridge.NewServer(d, zerolog.Nop())
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		_ = srv.Close(time.Second)
		ts.Close()
	})

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	cli, err := bridge.Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("failed to dial bridge: %v", err)
	}
	t.Cleanup(func() { cli.Close() })
	return cli
}

func TestBridgeEndToEnd(t *testing.T) {
	d, _ := newStack(t)
	cli := startBridge(t, d)

	resp, err := cli.Call(context.Background(), "add", []byte(`{"a":4,"b":6}`))
	if err != nil {
		t.Fatalf("call add failed: %v", err)
	}
	if resp.Status != envelope.StatusSuccess || resp.Body != "10" {
		t.Fatalf("expect Success/10, got %+v", resp)
	}
}

func TestBridgeCapabilityAndBody(t *testing.T) {
	d, store := newStack(t)
	cli := startBridge(t, d)

	// Only the data field travels on the wire; the store arrives from the
	// capability provider.
	resp, err := cli.Call(context.Background(), "saveNote", []byte(`{"note":{"title":"milk","pin":true}}`))
	if err != nil {
		t.Fatalf("call saveNote failed: %v", err)
	}
	if resp.Status != envelope.StatusSuccess || resp.Body != "1" {
		t.Fatalf("expect Success/1, got %+v", resp)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.notes) != 1 || store.notes[0].Title != "milk" || !store.notes[0].Pin {
		t.Fatalf("unexpected store contents: %+v", store.notes)
	}
}

func TestBridgeErrorEnvelope(t *testing.T) {
	d, _ := newStack(t)
	cli := startBridge(t, d)

	resp, err := cli.Call(context.Background(), "fail", nil)
	if err != nil {
		t.Fatalf("call fail failed: %v", err)
	}
	if resp.Status != envelope.StatusError {
		t.Fatalf("expect Error envelope, got %+v", resp)
	}
	if !strings.Contains(resp.Body, "always fails") {
		t.Fatalf("expect error description, got %s", resp.Body)
	}
}

// TestBridgeOutOfOrderCompletion issues a slow call and fast calls over the
// same connection; correlation ids pair each response with its caller even
// though completions arrive out of order.
func TestBridgeOutOfOrderCompletion(t *testing.T) {
	d, _ := newStack(t)
	cli := startBridge(t, d)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		resp, err := cli.Call(context.Background(), "slowEcho", []byte(`{"text":"slow"}`))
		if err != nil {
			t.Errorf("slow call failed: %v", err)
			return
		}
		if resp.Body != `"slow"` {
			t.Errorf("slow call got wrong response: %+v", resp)
		}
	}()

	for i := 0; i < 10; i++ {
		resp, err := cli.Call(context.Background(), "add", []byte(fmt.Sprintf(`{"a":%d,"b":0}`, i)))
		if err != nil {
			t.Fatalf("fast call %d failed: %v", i, err)
		}
		if resp.Body != fmt.Sprintf("%d", i) {
			t.Fatalf("fast call %d got wrong response: %+v", i, resp)
		}
	}
	wg.Wait()
}

func TestBridgeGracefulClose(t *testing.T) {
	d, _ := newStack(t)

	srv := bridge.NewServer(d, zerolog.Nop())
	ts := httptest.NewServer(srv)
	defer ts.Close()

	cli, err := bridge.Dial(context.Background(), "ws"+strings.TrimPrefix(ts.URL, "http"))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer cli.Close()

	if _, err := cli.Call(context.Background(), "add", []byte(`{"a":1,"b":1}`)); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if err := srv.Close(time.Second); err != nil {
		t.Fatalf("graceful close failed: %v", err)
	}
}

func TestConfigDrivenStack(t *testing.T) {
	t.Setenv("GALDR_LENIENT_ENVELOPE", "true")
	t.Setenv("GALDR_RATE_LIMIT", "0.0001")
	t.Setenv("GALDR_RATE_BURST", "2")

	opts, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Assemble the way cmd/galdrd does: options drive the middleware set
	// and the dispatcher's envelope policy.
	mw := []middleware.Middleware{middleware.Logging(zerolog.Nop())}
	if opts.RateLimit > 0 {
		mw = append(mw, middleware.RateLimit(opts.RateLimit, opts.RateBurst))
	}

	commands := registry.New()
	commands.Register(registry.Descriptor{
		Name:   "Add",
		Params: []registry.ParamSpec{registry.Arg[int]("a"), registry.Arg[int]("b")},
		Result: registry.Result[int](),
		Handler: func(ctx context.Context, args []any) (any, error) {
			return args[0].(int) + args[1].(int), nil
		},
	})

	d, err := dispatch.New(dispatch.Config{
		Commands:        commands,
		Codecs:          codec.NewRegistry(),
		Middleware:      mw,
		Logger:          zerolog.Nop(),
		LenientEnvelope: opts.LenientEnvelope,
	})
	if err != nil {
		t.Fatalf("failed to build dispatcher: %v", err)
	}

	ctx := context.Background()
	if raw := d.Dispatch(ctx, []byte(`{"not":"a call"}`)); raw != nil {
		t.Fatalf("expect lenient drop, got %s", raw)
	}

	call := []byte(`["add", {"a":1,"b":2}]`)
	for i := 0; i < 2; i++ {
		resp, err := envelope.DecodeResponse(d.Dispatch(ctx, call))
		if err != nil {
			t.Fatalf("decode response %d: %v", i, err)
		}
		if resp.Status != envelope.StatusSuccess || resp.Body != "3" {
			t.Fatalf("call %d within burst: got %+v", i, resp)
		}
	}
	resp, err := envelope.DecodeResponse(d.Dispatch(ctx, call))
	if err != nil {
		t.Fatalf("decode limited response: %v", err)
	}
	if resp.Status != envelope.StatusError {
		t.Fatalf("expect rate-limited error envelope, got %+v", resp)
	}
}
