package fiber

import (
	"github.com/AnatoleLucet/fiber/host"
	"github.com/AnatoleLucet/fiber/internal/reconciler"
)

// Root is a rendered tree attached to a host container.
type Root struct {
	runtime *Runtime
	root    *reconciler.FiberRoot
	mounted bool
}

// NewRoot creates a root rendering into container. Without WithRuntime it
// belongs to the calling goroutine's default runtime, whose renderer must
// understand container.
func NewRoot(container host.Instance, opts ...RootOption) *Root {
	cfg := resolveRootOptions(opts)

	rt := cfg.runtime
	if rt == nil {
		rt = GetRuntime()
	}

	tag := reconciler.LegacyRoot
	if cfg.concurrent {
		tag = reconciler.ConcurrentRoot
	}

	return &Root{
		runtime: rt,
		root:    rt.reconciler.CreateRoot(container, tag),
	}
}

// Render creates a root for container and renders element into it.
func Render(element Node, container host.Instance, opts ...RootOption) *Root {
	root := NewRoot(container, opts...)
	root.Render(element)
	return root
}

// Render replaces the tree of the root with element. A synchronous root is
// committed when Render returns; a concurrent one when the scheduler gets to it.
func (r *Root) Render(element Node) {
	rt := r.runtime.reconciler

	if r.root.Tag() == reconciler.LegacyRoot && !r.mounted {
		// the first mount is never batched
		r.mounted = true
		rt.UnbatchedUpdates(func() { rt.UpdateContainer(element, r.root) })
		return
	}

	r.mounted = true
	rt.UpdateContainer(element, r.root)
}

// Unmount removes the tree, running every cleanup. On a concurrent root the
// removal is scheduled like any other render.
func (r *Root) Unmount() {
	rt := r.runtime.reconciler
	rt.UnbatchedUpdates(func() { rt.UpdateContainer(nil, r.root) })
}

// DispatchEvent delivers an event of type typ (like "click") that happened on
// target to the listeners of the tree, capture phase first. It reports whether
// any listener ran.
func (r *Root) DispatchEvent(target host.Instance, typ string, payload any) bool {
	return r.runtime.reconciler.DispatchEvent(target, typ, payload)
}

func (r *Root) Container() host.Instance {
	return r.root.Container()
}

func (r *Root) Runtime() *Runtime {
	return r.runtime
}
