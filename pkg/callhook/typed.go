package callhook

import "context"

// Wrap0 wraps a typed no-argument callable.
func Wrap0[R any](i *Interceptor, site Site, fn func(context.Context) (R, error)) func(context.Context) (R, error) {
	wrapped := i.Wrap(site, func(ctx context.Context, _ ...any) (any, error) {
		return fn(ctx)
	})
	return func(ctx context.Context) (R, error) {
		out, err := wrapped(ctx)
		return as[R](out), err
	}
}

// Wrap1 wraps a typed one-argument callable.
func Wrap1[A, R any](i *Interceptor, site Site, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	wrapped := i.Wrap(site, func(ctx context.Context, args ...any) (any, error) {
		return fn(ctx, as[A](args[0]))
	})
	return func(ctx context.Context, a A) (R, error) {
		out, err := wrapped(ctx, a)
		return as[R](out), err
	}
}

// Wrap2 wraps a typed two-argument callable.
func Wrap2[A, B, R any](i *Interceptor, site Site, fn func(context.Context, A, B) (R, error)) func(context.Context, A, B) (R, error) {
	wrapped := i.Wrap(site, func(ctx context.Context, args ...any) (any, error) {
		return fn(ctx, as[A](args[0]), as[B](args[1]))
	})
	return func(ctx context.Context, a A, b B) (R, error) {
		out, err := wrapped(ctx, a, b)
		return as[R](out), err
	}
}

// Wrap3 wraps a typed three-argument callable.
func Wrap3[A, B, C, R any](i *Interceptor, site Site, fn func(context.Context, A, B, C) (R, error)) func(context.Context, A, B, C) (R, error) {
	wrapped := i.Wrap(site, func(ctx context.Context, args ...any) (any, error) {
		return fn(ctx, as[A](args[0]), as[B](args[1]), as[C](args[2]))
	})
	return func(ctx context.Context, a A, b B, c C) (R, error) {
		out, err := wrapped(ctx, a, b, c)
		return as[R](out), err
	}
}

// as converts v to T, yielding the zero value for nil.
func as[T any](v any) T {
	t, _ := v.(T)
	return t
}
