package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/callhook/pkg/callhook/dispatch"
	"github.com/randalmurphal/callhook/pkg/callhook/event"
)

func record(calls *[]string, label string) func(context.Context, any) error {
	return func(context.Context, any) error {
		*calls = append(*calls, label)
		return nil
	}
}

func TestDispatchNamed_EmptyName(t *testing.T) {
	d := dispatch.New()
	_, _ = d.AddListenerFunc("*", func(context.Context, any) error {
		t.Fatal("listener must not run")
		return nil
	})

	_, err := d.DispatchNamed(context.Background(), "", event.Payload{})
	require.Error(t, err)
	assert.ErrorIs(t, err, dispatch.ErrEmptyEventName)
	assert.Equal(t, `invalid event name: ""`, err.Error())
	assert.True(t, dispatch.IsEngineError(err))
}

func TestAddListener_InvalidPriority(t *testing.T) {
	d := dispatch.New()
	noop := func(context.Context, any) error { return nil }

	for _, p := range []int{-101, 101, 150} {
		_, err := d.AddListenerFunc("user.create", noop, dispatch.WithPriority(p))
		require.Error(t, err)
		assert.ErrorIs(t, err, dispatch.ErrInvalidPriority)
	}

	_, err := d.AddListenerFunc("user.create", noop, dispatch.WithPriority(150))
	assert.Equal(t, "invalid event listener priority: 150", err.Error())
	assert.Empty(t, d.ListenersFor("user.create"))
}

func TestAddListener_Nil(t *testing.T) {
	d := dispatch.New()
	_, err := d.AddListener("a", nil)
	assert.ErrorIs(t, err, dispatch.ErrNilListener)
	_, err = d.AddListenerFunc("a", nil)
	assert.ErrorIs(t, err, dispatch.ErrNilListener)
}

func TestDispatch_PriorityOrder(t *testing.T) {
	d := dispatch.New()
	var calls []string

	_, err := d.AddListenerFunc("user.create", record(&calls, "p5"), dispatch.WithPriority(5))
	require.NoError(t, err)
	_, err = d.AddListenerFunc("user.create", record(&calls, "p10"), dispatch.WithPriority(10))
	require.NoError(t, err)
	_, err = d.AddListenerFunc("user.create", record(&calls, "p5-second"), dispatch.WithPriority(5))
	require.NoError(t, err)

	_, err = d.DispatchNamed(context.Background(), "user.create", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p10", "p5", "p5-second"}, calls)
}

func TestDispatch_WildcardEquivalence(t *testing.T) {
	d := dispatch.New()
	count := 0
	_, err := d.AddListenerFunc("user.*", func(context.Context, any) error {
		count++
		return nil
	})
	require.NoError(t, err)

	for _, name := range []string{"user.create", "user.update", "user.delete"} {
		_, err := d.DispatchNamed(context.Background(), name, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, count)

	_, err = d.DispatchNamed(context.Background(), "user.group.create", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "* does not cross segments")
}

func TestDispatch_BraceAlternation(t *testing.T) {
	d := dispatch.New()
	var seen []string
	_, err := d.AddListener("*.group:{create,delete}", dispatch.OnPayload(func(_ context.Context, p event.Payload) error {
		seen = append(seen, p.String("name"))
		return nil
	}))
	require.NoError(t, err)
	_, err = d.AddListener("*.group:create", dispatch.OnPayload(func(_ context.Context, p event.Payload) error {
		seen = append(seen, "exact-suffix:"+p.String("name"))
		return nil
	}))
	require.NoError(t, err)

	for _, name := range []string{"user.group:create", "admin.group:create", "user.group:update", "user.group:delete"} {
		_, err := d.DispatchNamed(context.Background(), name, event.Payload{"name": name})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{
		"user.group:create", "exact-suffix:user.group:create",
		"admin.group:create", "exact-suffix:admin.group:create",
		"user.group:delete",
	}, seen)
}

func TestDispatch_StopPropagation(t *testing.T) {
	t.Run("returned sentinel halts lower priorities for this dispatch only", func(t *testing.T) {
		d := dispatch.New()
		var calls []string
		stop := true

		_, _ = d.AddListenerFunc("evt", func(context.Context, any) error {
			calls = append(calls, "high")
			if stop {
				return dispatch.ErrStopPropagation
			}
			return nil
		}, dispatch.WithPriority(10))
		_, _ = d.AddListenerFunc("evt", record(&calls, "low"), dispatch.WithPriority(-10))

		_, err := d.DispatchNamed(context.Background(), "evt", nil)
		require.NoError(t, err, "stopping is not an error")
		assert.Equal(t, []string{"high"}, calls)

		stop = false
		_, err = d.DispatchNamed(context.Background(), "evt", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"high", "high", "low"}, calls)
	})

	t.Run("wrapped sentinel also stops", func(t *testing.T) {
		d := dispatch.New()
		var calls []string
		_, _ = d.AddListenerFunc("evt", func(context.Context, any) error {
			return errors.Join(errors.New("done here"), dispatch.ErrStopPropagation)
		})
		_, _ = d.AddListenerFunc("evt", record(&calls, "second"))

		_, err := d.DispatchNamed(context.Background(), "evt", nil)
		require.NoError(t, err)
		assert.Empty(t, calls)
	})

	t.Run("event flag halts typed dispatch", func(t *testing.T) {
		d := dispatch.New()
		var calls []string
		_, _ = d.AddListener(event.KeyBeforeFunction, dispatch.OnEvent(func(_ context.Context, evt *event.Event) error {
			calls = append(calls, "first")
			evt.StopPropagation()
			return nil
		}), dispatch.WithPriority(1))
		_, _ = d.AddListenerFunc(event.KeyBeforeFunction, record(&calls, "second"))

		evt := event.NewBeforeFunction("fn", nil)
		out, err := d.Dispatch(context.Background(), evt)
		require.NoError(t, err)
		assert.Same(t, evt, out)
		assert.True(t, out.IsPropagationStopped())
		assert.Equal(t, []string{"first"}, calls)

		// A fresh event is unaffected.
		_, err = d.Dispatch(context.Background(), event.NewBeforeFunction("fn", nil))
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "first"}, calls)
	})
}

func TestDispatch_AlreadyStopped(t *testing.T) {
	evt := event.NewAfterFunction("fn", nil, "ok", nil)
	evt.StopPropagation()

	t.Run("returned unchanged by default", func(t *testing.T) {
		d := dispatch.New()
		called := false
		_, _ = d.AddListenerFunc(event.KeyAfterFunction, func(context.Context, any) error {
			called = true
			return nil
		})

		out, err := d.Dispatch(context.Background(), evt)
		require.NoError(t, err)
		assert.Same(t, evt, out)
		assert.False(t, called)
	})

	t.Run("rejected in strict mode", func(t *testing.T) {
		d := dispatch.New(dispatch.WithRejectStopped(true))
		_, err := d.Dispatch(context.Background(), evt)
		require.Error(t, err)
		assert.ErrorIs(t, err, dispatch.ErrPropagationAlreadyStopped)
		assert.Equal(t, `event "callhook:after_function" propagation was already stopped`, err.Error())
	})
}

func TestDispatch_NilEvent(t *testing.T) {
	_, err := dispatch.New().Dispatch(context.Background(), nil)
	assert.ErrorIs(t, err, dispatch.ErrNilEvent)
}

func TestDispatch_RequireListeners(t *testing.T) {
	t.Run("default allows empty dispatch", func(t *testing.T) {
		out, err := dispatch.New().DispatchNamed(context.Background(), "nobody.home", nil)
		require.NoError(t, err)
		assert.NotNil(t, out)
	})

	t.Run("strict mode fails", func(t *testing.T) {
		d := dispatch.New(dispatch.WithRequireListeners(true))
		_, err := d.DispatchNamed(context.Background(), "nobody.home", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, dispatch.ErrNoListeners)
		assert.Equal(t, `no listeners found for event "nobody.home"`, err.Error())

		var nf *dispatch.ListenerNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "nobody.home", nf.EventName)
	})
}

func TestDispatch_NestedOrder(t *testing.T) {
	d := dispatch.New()
	var calls []string
	ctx := context.Background()

	_, _ = d.AddListenerFunc("A", func(ctx context.Context, _ any) error {
		calls = append(calls, "A-start")
		if _, err := d.DispatchNamed(ctx, "B", nil); err != nil {
			return err
		}
		calls = append(calls, "A-end")
		return nil
	})
	_, _ = d.AddListenerFunc("B", record(&calls, "B"))

	_, err := d.DispatchNamed(ctx, "A", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-start", "B", "A-end"}, calls)
}

func TestDispatch_PayloadMutation(t *testing.T) {
	d := dispatch.New()
	_, _ = d.AddListener("evt", dispatch.OnPayload(func(_ context.Context, p event.Payload) error {
		p["modified"] = true
		return nil
	}))
	_, _ = d.AddListener("evt", dispatch.OnPayload(func(_ context.Context, p event.Payload) error {
		assert.Equal(t, true, p["modified"], "later listeners see earlier changes")
		return nil
	}))

	in := event.Payload{"original": true}
	out, err := d.DispatchNamed(context.Background(), "evt", in)
	require.NoError(t, err)
	assert.Equal(t, true, out["original"])
	assert.Equal(t, true, out["modified"])
	assert.Equal(t, true, in["modified"], "payload is shared, not copied")
}

func TestDispatch_ErrorWrapping(t *testing.T) {
	boom := errors.New("boom")

	t.Run("listener errors are wrapped by default", func(t *testing.T) {
		d := dispatch.New()
		var calls []string
		_, _ = d.AddListenerFunc("x", func(context.Context, any) error { return boom }, dispatch.WithPriority(1))
		_, _ = d.AddListenerFunc("x", record(&calls, "after"))

		_, err := d.DispatchNamed(context.Background(), "x", nil)
		require.Error(t, err)
		assert.Equal(t, `error dispatching event "x": boom`, err.Error())
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, calls, "failure aborts the dispatch")

		var de *dispatch.DispatchError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "x", de.EventName)
		assert.Equal(t, boom, de.Cause)
		assert.True(t, dispatch.IsEngineError(err))
	})

	t.Run("panics are recovered and wrapped", func(t *testing.T) {
		d := dispatch.New()
		_, _ = d.AddListenerFunc("x", func(context.Context, any) error { panic("kaboom") })

		_, err := d.DispatchNamed(context.Background(), "x", nil)
		require.Error(t, err)

		var de *dispatch.DispatchError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "kaboom", de.Cause)

		var pe *dispatch.PanicError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "kaboom", pe.Value)
	})

	t.Run("wrapping disabled returns faults as-is", func(t *testing.T) {
		d := dispatch.New(dispatch.WithErrorWrapping(false))
		_, _ = d.AddListenerFunc("x", func(context.Context, any) error { return boom })

		_, err := d.DispatchNamed(context.Background(), "x", nil)
		assert.Same(t, boom, err)
		assert.False(t, dispatch.IsEngineError(err))
	})

	t.Run("engine errors pass through unwrapped", func(t *testing.T) {
		d := dispatch.New()
		_, _ = d.AddListenerFunc("outer", func(ctx context.Context, _ any) error {
			_, err := d.DispatchNamed(ctx, "inner", nil)
			return err
		})
		_, _ = d.AddListenerFunc("inner", func(context.Context, any) error { return boom })

		_, err := d.DispatchNamed(context.Background(), "outer", nil)
		require.Error(t, err)
		assert.Equal(t, `error dispatching event "inner": boom`, err.Error())

		var de *dispatch.DispatchError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "inner", de.EventName)
	})

	t.Run("engine error raised by listener passes through", func(t *testing.T) {
		d := dispatch.New()
		_, _ = d.AddListenerFunc("x", func(context.Context, any) error {
			return &dispatch.EventNameError{Name: ""}
		})

		_, err := d.DispatchNamed(context.Background(), "x", nil)
		var ne *dispatch.EventNameError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, `invalid event name: ""`, err.Error())
	})

	sentinels := []struct {
		name string
		err  error
	}{
		{"empty event name", dispatch.ErrEmptyEventName},
		{"invalid priority", dispatch.ErrInvalidPriority},
		{"already stopped", dispatch.ErrPropagationAlreadyStopped},
		{"no listeners", dispatch.ErrNoListeners},
		{"max depth", dispatch.ErrMaxDepthExceeded},
		{"nil listener", dispatch.ErrNilListener},
		{"nil event", dispatch.ErrNilEvent},
		{"wrapped sentinel", fmt.Errorf("register: %w", dispatch.ErrEmptyEventName)},
	}
	for _, tt := range sentinels {
		t.Run("bare sentinel passes through/"+tt.name, func(t *testing.T) {
			d := dispatch.New()
			_, _ = d.AddListenerFunc("s", func(context.Context, any) error { return tt.err })

			_, err := d.DispatchNamed(context.Background(), "s", nil)
			assert.Same(t, tt.err, err)
			assert.True(t, dispatch.IsEngineError(err))

			var de *dispatch.DispatchError
			assert.False(t, errors.As(err, &de))
		})
	}

	t.Run("error panics keep the panic marker", func(t *testing.T) {
		d := dispatch.New()
		_, _ = d.AddListenerFunc("x", func(context.Context, any) error { panic(boom) })

		_, err := d.DispatchNamed(context.Background(), "x", nil)

		var de *dispatch.DispatchError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, boom, de.Cause)

		var pe *dispatch.PanicError
		require.ErrorAs(t, err, &pe)
		assert.Same(t, boom, pe.Value)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("panics keep the marker without wrapping", func(t *testing.T) {
		d := dispatch.New(dispatch.WithErrorWrapping(false))
		_, _ = d.AddListenerFunc("x", func(context.Context, any) error { panic(boom) })

		_, err := d.DispatchNamed(context.Background(), "x", nil)

		var pe *dispatch.PanicError
		require.ErrorAs(t, err, &pe)
		assert.ErrorIs(t, err, boom)
	})
}

func TestDispatch_MaxDepth(t *testing.T) {
	d := dispatch.New(dispatch.WithMaxDepth(3))
	depth := 0
	_, _ = d.AddListenerFunc("loop", func(ctx context.Context, _ any) error {
		depth++
		_, err := d.DispatchNamed(ctx, "loop", nil)
		return err
	})

	_, err := d.DispatchNamed(context.Background(), "loop", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dispatch.ErrMaxDepthExceeded)
	assert.Equal(t, 3, depth)
	assert.True(t, dispatch.IsEngineError(err))
}

func TestDispatch_ListenerModifiesRegistry(t *testing.T) {
	d := dispatch.New()
	var calls []string
	var secondID string

	_, _ = d.AddListenerFunc("evt", func(context.Context, any) error {
		calls = append(calls, "first")
		d.RemoveListener(secondID)
		_, _ = d.AddListenerFunc("evt", record(&calls, "late"))
		return nil
	}, dispatch.WithPriority(10))
	secondID, _ = d.AddListenerFunc("evt", record(&calls, "second"))

	_, err := d.DispatchNamed(context.Background(), "evt", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls, "dispatch runs on a snapshot")

	calls = nil
	_, err = d.DispatchNamed(context.Background(), "evt", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "late"}, calls[:2])
}

func TestDispatch_TypedListenersSeeKindKey(t *testing.T) {
	d := dispatch.New()
	var got []*event.Event
	_, _ = d.AddListener("callhook:before_*", dispatch.OnEvent(func(_ context.Context, evt *event.Event) error {
		got = append(got, evt)
		return nil
	}))

	target := &struct{}{}
	_, err := d.Dispatch(context.Background(), event.NewBeforeMethod(target, "Save", []any{1}))
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), event.NewBeforeFunction("save", nil))
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), event.NewAfterFunction("save", nil, nil, nil))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, event.KindBeforeMethod, got[0].Kind())
	assert.Equal(t, event.KindBeforeFunction, got[1].Kind())
}

func TestDispatch_WildcardsOnTypedKeys(t *testing.T) {
	d := dispatch.New()
	var bare, dotted int
	_, _ = d.AddListenerFunc("*", func(context.Context, any) error {
		bare++
		return nil
	})
	_, _ = d.AddListenerFunc("*.*", func(context.Context, any) error {
		dotted++
		return nil
	})

	_, err := d.Dispatch(context.Background(), event.NewBeforeFunction("save", nil))
	require.NoError(t, err)

	// A typed key is a single segment.
	assert.Equal(t, 1, bare)
	assert.Zero(t, dotted)
}

func TestOnEventAndOnPayloadIgnoreOtherSubjects(t *testing.T) {
	ctx := context.Background()
	called := false

	onEvent := dispatch.OnEvent(func(context.Context, *event.Event) error { called = true; return nil })
	onPayload := dispatch.OnPayload(func(context.Context, event.Payload) error { called = true; return nil })

	require.NoError(t, onEvent.Handle(ctx, event.Payload{}))
	require.NoError(t, onPayload.Handle(ctx, event.NewBeforeFunction("f", nil)))
	assert.False(t, called)
}

func TestListenersForAndPatterns(t *testing.T) {
	d := dispatch.New()
	noop := func(context.Context, any) error { return nil }
	id, _ := d.AddListenerFunc("user.*", noop)
	_, _ = d.AddListenerFunc("user.create", noop)

	assert.Len(t, d.ListenersFor("user.create"), 2)
	assert.Len(t, d.ListenersFor("user.update"), 1)
	assert.True(t, d.HasListeners("user.update"))
	assert.False(t, d.HasListeners("order.create"))
	assert.Equal(t, []string{"user.*", "user.create"}, d.Patterns())

	assert.True(t, d.RemoveListener(id))
	assert.False(t, d.HasListeners("user.update"))
	assert.Equal(t, 1, d.Registry().Len())
}
