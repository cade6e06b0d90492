package callhook_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/callhook/pkg/callhook"
	"github.com/randalmurphal/callhook/pkg/callhook/binding"
	"github.com/randalmurphal/callhook/pkg/callhook/dispatch"
	"github.com/randalmurphal/callhook/pkg/callhook/event"
)

const wildcardBindings = `
bindings:
  - member: userOperation
    before: [user.create, user.update, user.delete]
  - member: groupOperation
    before: ["user.group:create", "user.group:update", "admin.group:create"]
  - member: updateOperation
    before: [user.profile.update, user.settings.update, admin.profile.update]
  - member: userService.createUser
    before: [user.create]
`

func loadInterceptor(t *testing.T) (*dispatch.Dispatcher, *callhook.Interceptor) {
	t.Helper()
	table, err := binding.LoadYAML([]byte(wildcardBindings))
	require.NoError(t, err)
	d := dispatch.New()
	return d, callhook.New(d, callhook.WithSource(table))
}

func TestFunction_WildcardListener(t *testing.T) {
	d, ic := loadInterceptor(t)
	count := 0
	_, _ = d.AddListenerFunc("user.*", func(context.Context, any) error {
		count++
		return nil
	})

	_, err := ic.Function("userOperation", noop)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestFunction_GroupListener(t *testing.T) {
	d, ic := loadInterceptor(t)
	count := 0
	_, _ = d.AddListenerFunc("*.group:create", func(context.Context, any) error {
		count++
		return nil
	})

	_, err := ic.Function("groupOperation", noop)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFunction_MultipleWildcardPatterns(t *testing.T) {
	d, ic := loadInterceptor(t)
	var log []string
	_, _ = d.AddListenerFunc("user.*.*", record(&log, "user_wildcard"))
	_, _ = d.AddListenerFunc("*.profile.*", record(&log, "profile_wildcard"))

	_, err := ic.Function("updateOperation", noop)(context.Background())
	require.NoError(t, err)
	assert.Contains(t, log, "user_wildcard")
	assert.Contains(t, log, "profile_wildcard")
	assert.Len(t, log, 4)
}

func TestMethod_WildcardPriority(t *testing.T) {
	d, ic := loadInterceptor(t)
	var log []string
	_, _ = d.AddListenerFunc("user.*", record(&log, "wildcard_high"), dispatch.WithPriority(10))
	_, _ = d.AddListenerFunc("user.create", record(&log, "exact_medium"), dispatch.WithPriority(5))
	_, _ = d.AddListenerFunc("*.*", record(&log, "wildcard_low"))

	svc := &userService{}
	_, err := ic.Method(svc, "createUser", noop)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"wildcard_high", "exact_medium", "wildcard_low"}, log)
}

func TestMethod_WildcardPropagation(t *testing.T) {
	d, ic := loadInterceptor(t)
	var log []string
	_, _ = d.AddListenerFunc("user.*", func(context.Context, any) error {
		log = append(log, "wildcard_before_stop")
		return dispatch.ErrStopPropagation
	}, dispatch.WithPriority(10))
	_, _ = d.AddListenerFunc("user.create", record(&log, "exact_match"), dispatch.WithPriority(5))

	_, err := ic.Method(&userService{}, "createUser", noop)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"wildcard_before_stop"}, log)
}

func TestMethod_LookupFallsBackToMember(t *testing.T) {
	d, ic := loadInterceptor(t)
	var targets []any
	_, _ = d.AddListener("user.create", dispatch.OnPayload(func(_ context.Context, p event.Payload) error {
		targets = append(targets, p[event.FieldTarget])
		return nil
	}))

	other := &account{}
	_, err := ic.Method(other, "userOperation", noop)(context.Background())
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Same(t, other, targets[0])
}

func TestMethodAndFunction_Unbound(t *testing.T) {
	d, ic := loadInterceptor(t)
	called := false
	_, _ = d.AddListenerFunc("*", func(context.Context, any) error {
		called = true
		return nil
	})

	_, err := ic.Function("unknown", noop)(context.Background())
	require.NoError(t, err)
	_, err = ic.Method(&userService{}, "unknown", noop)(context.Background())
	require.NoError(t, err)
	assert.False(t, called)

	bare := callhook.New(d)
	_, ok := bare.ResolveFunction("userOperation")
	assert.False(t, ok, "no source configured")
	_, ok = bare.ResolveMethod(&userService{}, "createUser")
	assert.False(t, ok)
}
