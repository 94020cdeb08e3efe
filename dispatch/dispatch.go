// Package dispatch implements the runtime entry point of the command
// engine: parse the wire envelope, look up the command, resolve arguments,
// invoke the handler, and serialize the result back into a response
// envelope.
//
// One Dispatch call handles one inbound wire call. Calls may run
// concurrently; the command table, codec registry, and middleware chain are
// built once at construction and read-only afterwards, and every invocation
// owns its argument list and result, so no cross-call state is shared. A
// handler error, conversion failure, or panic is always converted into an
// Error envelope and never escapes or affects other in-flight calls.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rthomasv3/Galdr/codec"
	"github.com/rthomasv3/Galdr/envelope"
	"github.com/rthomasv3/Galdr/jsontext"
	"github.com/rthomasv3/Galdr/middleware"
	"github.com/rthomasv3/Galdr/provider"
	"github.com/rthomasv3/Galdr/registry"
	"github.com/rthomasv3/Galdr/resolve"
)

// ErrUnknownCommand reports a call naming no registered command. Unknown
// commands always surface as an Error envelope, never a silent drop.
var ErrUnknownCommand = errors.New("dispatch: unknown command")

// Config assembles a Dispatcher. Commands and Codecs are required; a nil
// Provider means no capability parameters can resolve.
type Config struct {
	Commands *registry.Registry
	Codecs   *codec.Registry
	Provider *provider.Provider

	// Middleware wraps invocation in order; built into a single chain once.
	Middleware []middleware.Middleware

	Logger zerolog.Logger

	// LenientEnvelope drops malformed wire payloads silently (Dispatch
	// returns nil) instead of answering with an Error envelope.
	LenientEnvelope bool
}

// Dispatcher routes wire calls to registered command handlers.
type Dispatcher struct {
	commands *registry.Registry
	codecs   *codec.Registry
	resolver *resolve.Resolver
	handler  middleware.HandlerFunc
	logger   zerolog.Logger
	lenient  bool
}

// New validates the configured command table against the codec registry and
// capability provider, failing fast at startup rather than at call time.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Commands == nil || cfg.Codecs == nil {
		return nil, errors.New("dispatch: command and codec registries are required")
	}
	prov := cfg.Provider
	if prov == nil {
		prov = provider.New()
	}
	if err := cfg.Commands.Validate(cfg.Codecs); err != nil {
		return nil, err
	}
	for _, name := range cfg.Commands.Names() {
		d, _ := cfg.Commands.Lookup(name)
		for i, p := range d.Params {
			if p.FromProvider && !prov.Has(p.Type) {
				return nil, fmt.Errorf("command %q parameter %d: no capability registration for %s",
					name, i, p.Type)
			}
		}
	}

	d := &Dispatcher{
		commands: cfg.Commands,
		codecs:   cfg.Codecs,
		resolver: resolve.New(cfg.Codecs, prov),
		logger:   cfg.Logger,
		lenient:  cfg.LenientEnvelope,
	}
	d.handler = middleware.Chain(cfg.Middleware...)(d.invoke)
	return d, nil
}

// Dispatch processes one inbound wire call and returns the response
// envelope. The return is nil only for malformed payloads under
// LenientEnvelope. Callers wanting concurrent dispatch run Dispatch on their
// own goroutines; completions across calls may arrive in any order.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) []byte {
	req, err := envelope.DecodeRequest(raw)
	if err != nil {
		if d.lenient {
			d.logger.Debug().Err(err).Msg("dropping malformed call")
			return nil
		}
		return d.errorResponse("", err)
	}

	result := d.handler(ctx, &middleware.Call{Command: req.Command, Params: req.Params})
	if result.Err != nil {
		return d.errorResponse(req.Command, result.Err)
	}
	return envelope.EncodeResponse(&envelope.Response{
		Status: envelope.StatusSuccess,
		Body:   d.encodeResult(req.Command, result),
	})
}

// invoke is the innermost handler wrapped by the middleware chain: command
// lookup, argument resolution, and the handler call itself. A panicking
// handler is contained here.
func (d *Dispatcher) invoke(ctx context.Context, call *middleware.Call) (result *middleware.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = &middleware.Result{Err: fmt.Errorf("handler panic: %v", r)}
		}
	}()

	desc, ok := d.commands.Lookup(call.Command)
	if !ok {
		return &middleware.Result{Err: fmt.Errorf("%w: %q", ErrUnknownCommand, call.Command)}
	}
	args, err := d.resolver.Resolve(desc.Params, call.Params)
	if err != nil {
		return &middleware.Result{Err: err}
	}
	v, err := desc.Handler(ctx, args)
	if err != nil {
		return &middleware.Result{Err: err}
	}
	return &middleware.Result{Value: v, Type: desc.Result}
}

// encodeResult serializes a successful result body. A void result encodes
// as the empty body; an encoding failure degrades to the value's plain text
// form instead of failing the whole call.
func (d *Dispatcher) encodeResult(command string, res *middleware.Result) string {
	if res.Type == nil || res.Value == nil {
		return ""
	}
	body, err := d.codecs.Encode(res.Value, res.Type)
	if err != nil {
		d.logger.Warn().Err(err).Str("command", command).Msg("result encoding failed, using text form")
		w := jsontext.NewWriter()
		w.WriteString(fmt.Sprint(res.Value))
		return w.String()
	}
	return string(body)
}

func (d *Dispatcher) errorResponse(command string, err error) []byte {
	return envelope.EncodeResponse(&envelope.Response{
		Status: envelope.StatusError,
		Body:   envelope.EncodeErrorBody(command, err),
	})
}
