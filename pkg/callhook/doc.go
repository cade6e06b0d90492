/*
Package callhook intercepts calls and turns them into events.

An Interceptor wraps a callable so that every call dispatches "before"
notifications, runs the callable, and then dispatches "after"
notifications carrying either the result or the failure. Listeners observe
calls without the callable knowing about them.

# Quick Start

	d := dispatch.New()
	d.AddListener("user.*", dispatch.OnPayload(func(ctx context.Context, p event.Payload) error {
	    slog.Info("user call", "member", p.String(event.FieldMember), "args", p.Arguments())
	    return nil
	}))

	ic := callhook.New(d)
	create := callhook.Wrap1(ic,
	    callhook.MethodSite(svc, "CreateUser", binding.Set{
	        Before: []binding.Binding{{Event: "user.creating"}},
	        After:  []binding.Binding{{Event: "user.created"}},
	    }),
	    svc.CreateUser,
	)

	user, err := create(ctx, "alice")

# Notifications

Each binding produces two dispatches: the typed *event.Event under its
Kind key (for example "callhook:before_method"), then an event.Payload
envelope under the binding's event name, defaulting to "<member>.before"
or "<member>.after". The envelope holds the event, the target (methods
only), the member name, the arguments, and the result or exception.

Stopping propagation during the before phase skips the remaining before
bindings. It never prevents the call itself.

# Failures

The caller always gets the callable's own result, error, or panic. A
failed before notification aborts the call; a failed after notification is
returned when the call succeeded and logged when it failed.

# Bindings From Configuration

Method and Function read bindings from a binding.Source, such as a table
loaded from YAML:

	table, err := binding.LoadFile("bindings.yaml")
	ic := callhook.New(d, callhook.WithSource(table))
	save := ic.Method(repo, "Save", repoSave)

# Packages

  - pattern: wildcard and alternation matching of event names
  - event: the typed event and the named payload envelope
  - dispatch: listener registry and dispatcher
  - binding: binding records, tables, and loaders
  - config: typed configuration access
  - observability: logging, metrics, and tracing helpers
  - audit: call records persisted from dispatched events
*/
package callhook
