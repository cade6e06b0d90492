// Package event defines the notifications produced around an intercepted call.
//
// # Variants
//
// An Event is one of four kinds:
//
//   - KindBeforeMethod: a method on a target is about to run
//   - KindAfterMethod: a method on a target has returned or failed
//   - KindBeforeFunction: a free function is about to run
//   - KindAfterFunction: a free function has returned or failed
//
// Every kind has a fixed dispatch key (Kind.Key) so listeners can subscribe to
// all notifications of one kind, independent of the member name:
//
//	d.AddListenerFunc(event.KindAfterMethod.Key(), auditListener)
//
// Keys have the form "callhook:<kind>" and contain no ".", so each is a
// single segment: a dotted pattern such as "*.*" or "user.*" never sees typed
// dispatches, while a bare "*" matches every one of them.
//
// # Snapshot Semantics
//
// An Event captures the call context at construction time: the target, the
// member name and a copy of the argument slice. After kinds also carry either
// the result or the error, never both. The only mutable state is the
// propagation flag, which can be set but never cleared:
//
//	evt := event.NewBeforeMethod(svc, "CreateUser", []any{"alice"})
//	evt.StopPropagation()
//	evt.IsPropagationStopped() // true
//
// # Payload
//
// Named dispatches carry a Payload, a plain map shared by every listener of
// that dispatch. The interceptor fills it with an envelope built by
// NewEnvelope:
//
//	{event, target, member, arguments, result | exception}
package event
