package callhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/callhook/pkg/callhook/binding"
	"github.com/randalmurphal/callhook/pkg/callhook/dispatch"
	"github.com/randalmurphal/callhook/pkg/callhook/event"
	"github.com/randalmurphal/callhook/pkg/callhook/observability"
)

// Func is the dynamic form of an intercepted callable.
type Func func(ctx context.Context, args ...any) (any, error)

// Interceptor wraps callables so that calling them emits before and after
// notifications through a Dispatcher.
type Interceptor struct {
	dispatcher *dispatch.Dispatcher
	cfg        interceptorConfig
}

// New creates an Interceptor that dispatches through d.
// A nil d gets a fresh dispatcher with default options.
func New(d *dispatch.Dispatcher, opts ...Option) *Interceptor {
	if d == nil {
		d = dispatch.New()
	}
	cfg := defaultInterceptorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Interceptor{dispatcher: d, cfg: cfg}
}

// Dispatcher returns the dispatcher notifications are sent through.
func (i *Interceptor) Dispatcher() *dispatch.Dispatcher {
	return i.dispatcher
}

// WrapMethod wraps fn, a method named member on target, with the given bindings.
func (i *Interceptor) WrapMethod(target any, member string, set binding.Set, fn Func) Func {
	return i.Wrap(MethodSite(target, member, set), fn)
}

// WrapFunction wraps fn, a function named member, with the given bindings.
func (i *Interceptor) WrapFunction(member string, set binding.Set, fn Func) Func {
	return i.Wrap(FunctionSite(member, set), fn)
}

// Method wraps a method using bindings from the configured Source.
// Bindings are looked up under "<Type>.<member>" first, then member.
// Without a match fn is returned unchanged.
func (i *Interceptor) Method(target any, member string, fn Func) Func {
	site, ok := i.ResolveMethod(target, member)
	if !ok {
		return fn
	}
	return i.Wrap(site, fn)
}

// Function wraps a function using bindings from the configured Source.
// Without a match fn is returned unchanged.
func (i *Interceptor) Function(member string, fn Func) Func {
	site, ok := i.ResolveFunction(member)
	if !ok {
		return fn
	}
	return i.Wrap(site, fn)
}

// ResolveMethod builds a method Site from the configured Source.
func (i *Interceptor) ResolveMethod(target any, member string) (Site, bool) {
	if i.cfg.source == nil {
		return Site{}, false
	}
	if set, ok := i.cfg.source.Bindings(binding.QualifiedName(target, member)); ok {
		return MethodSite(target, member, set), true
	}
	if set, ok := i.cfg.source.Bindings(member); ok {
		return MethodSite(target, member, set), true
	}
	return Site{}, false
}

// ResolveFunction builds a function Site from the configured Source.
func (i *Interceptor) ResolveFunction(member string) (Site, bool) {
	if i.cfg.source == nil {
		return Site{}, false
	}
	set, ok := i.cfg.source.Bindings(member)
	if !ok {
		return Site{}, false
	}
	return FunctionSite(member, set), true
}

// Wrap returns a Func that runs fn between the site's before and after
// notifications.
//
// For each before binding, in order, a typed event is dispatched under its
// Kind key and then the envelope is dispatched under the binding's event
// name (default "<member>.before"). If a listener stops the event, the
// remaining before bindings are skipped; fn still runs. After fn returns
// or panics, the after bindings are processed the same way with the result
// or the failure.
//
// fn's result and error are returned unchanged, and a panic is re-raised
// with its original value. A before-phase dispatch error is returned
// without calling fn. An after-phase dispatch error is returned on success
// and logged on failure, where the original failure wins.
//
// A site with an out-of-range binding priority yields a Func that always
// fails with *dispatch.PriorityError.
func (i *Interceptor) Wrap(site Site, fn Func) Func {
	if err := site.Bindings.Validate(); err != nil {
		invalid := fmt.Errorf("%s: %w", site.Member, err)
		return func(context.Context, ...any) (any, error) {
			return nil, invalid
		}
	}
	return func(ctx context.Context, args ...any) (any, error) {
		return i.invoke(ctx, site, fn, args)
	}
}

// outcome is what the wrapped call produced.
type outcome struct {
	result   any
	err      error
	panicVal any
	panicked bool
}

// fault returns the failure as seen by after listeners.
func (o outcome) fault() error {
	if o.panicked {
		return &PanicError{Value: o.panicVal}
	}
	return o.err
}

func (i *Interceptor) invoke(ctx context.Context, site Site, fn Func, args []any) (result any, err error) {
	invocationID := uuid.NewString()
	logger := observability.EnrichLogger(i.cfg.logger, site.Member, invocationID)
	ctx, span := i.cfg.spans.StartInvocationSpan(ctx, site.Member, invocationID)
	done := observability.TimedOperation()
	start := time.Now()

	var out outcome
	defer func() {
		recorded := err
		if out.panicked {
			recorded = out.fault()
		}
		i.cfg.spans.EndSpanWithError(span, recorded)
		i.cfg.metrics.RecordInvocation(ctx, site.Member, time.Since(start), recorded)
		if recorded != nil {
			observability.LogInvocationError(logger, site.Member, recorded, done())
		} else {
			observability.LogInvocationComplete(logger, site.Member, done())
		}
	}()

	observability.LogInvocationStart(logger, site.Member, len(args))

	if _, err := i.notify(ctx, site, site.Bindings.Before, binding.BeforeSuffix, func() *event.Event {
		return site.beforeEvent(args)
	}); err != nil {
		return nil, err
	}

	out = execute(ctx, fn, args)
	fault := out.fault()

	failedEvent, notifyErr := i.notify(ctx, site, site.Bindings.After, binding.AfterSuffix, func() *event.Event {
		if fault != nil {
			return site.afterEvent(args, nil, fault)
		}
		return site.afterEvent(args, out.result, nil)
	})

	if fault != nil && notifyErr != nil {
		observability.LogNotificationDropped(logger, site.Member, failedEvent, notifyErr)
	}
	if out.panicked {
		panic(out.panicVal)
	}
	if out.err != nil {
		return out.result, out.err
	}
	if notifyErr != nil {
		return out.result, notifyErr
	}
	return out.result, nil
}

// execute calls fn, capturing a panic instead of unwinding.
func execute(ctx context.Context, fn Func, args []any) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{panicVal: r, panicked: true}
		}
	}()
	result, err := fn(ctx, args...)
	return outcome{result: result, err: err}
}

// notify runs the typed and named dispatches for each binding in order,
// stopping early when a listener stops the event. On failure it returns
// the name that was being dispatched.
func (i *Interceptor) notify(ctx context.Context, site Site, bindings []binding.Binding, suffix string, newEvent func() *event.Event) (string, error) {
	for _, b := range bindings {
		evt := newEvent()
		if _, err := i.dispatcher.Dispatch(ctx, evt); err != nil {
			return evt.Key(), err
		}

		name := b.Name(site.Member, suffix)
		if _, err := i.dispatcher.DispatchNamed(ctx, name, event.NewEnvelope(evt)); err != nil {
			return name, err
		}

		if evt.IsPropagationStopped() {
			break
		}
	}
	return "", nil
}
