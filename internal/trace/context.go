package trace

import "context"

type ctxKey struct{}

// binding is what a context carries: the tracer and the innermost span
// opened through StartSpan.
type binding struct {
	tracer Tracer
	span   uint64
}

func bindingOf(ctx context.Context) binding {
	if ctx != nil {
		if b, ok := ctx.Value(ctxKey{}).(binding); ok {
			return b
		}
	}
	return binding{tracer: Nop}
}

// WithTracer returns a copy of ctx carrying t. A nil t disables tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, binding{tracer: t})
}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return bindingOf(ctx).tracer
}

// ParentID returns the id of the innermost span started on ctx, 0 at the
// root.
func ParentID(ctx context.Context) uint64 {
	return bindingOf(ctx).span
}

func withSpan(ctx context.Context, id uint64) context.Context {
	b := bindingOf(ctx)
	b.span = id
	return context.WithValue(ctx, ctxKey{}, b)
}
