package task

import (
	"context"
	"sync"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Func is a task body. It may report progress on n, call n.Skip to end the
// task as skipped, and should return when ctx is canceled.
type Func func(ctx context.Context, n *Node) error

// Spec declares a task. Children run after the body succeeds, using the
// spec's Options.
type Spec struct {
	Title    string
	Run      Func
	Children []Spec
	Options  Options
}

// Options is the execution policy for a list of sibling tasks.
type Options struct {
	// Concurrent runs siblings in parallel.
	Concurrent bool
	// Limit caps the number of siblings running at once. 0 means no limit.
	Limit int
	// ExitOnError starts no further siblings after the first failure and
	// cancels the ones already running.
	ExitOnError bool
}

// Runner executes a tree of specs against a matching tree of nodes.
type Runner struct {
	specs []Spec
	nodes []*Node
	opts  Options
}

// NewRunner builds the pending node tree for specs.
func NewRunner(specs []Spec, opts Options) *Runner {
	r := &Runner{specs: specs, opts: opts}
	for _, s := range specs {
		n := NewNode(s.Title)
		addChildren(n, s.Children)
		r.nodes = append(r.nodes, n)
	}
	return r
}

func addChildren(parent *Node, specs []Spec) {
	for _, s := range specs {
		addChildren(parent.AddChild(s.Title), s.Children)
	}
}

// Nodes returns the root nodes, for attaching to a Renderer before Run.
func (r *Runner) Nodes() []*Node { return r.nodes }

// Run executes the tree and returns every task failure joined together.
// A task fails when its body returns an error or panics, or when one of
// its children fails. Failures never fail siblings implicitly.
func (r *Runner) Run(ctx context.Context) error {
	return runList(ctx, r.specs, r.nodes, r.opts)
}

// Run is shorthand for NewRunner, subscribing observer and running.
func Run(ctx context.Context, specs []Spec, opts Options, observer Observer) error {
	r := NewRunner(specs, opts)
	if observer != nil {
		for _, n := range r.nodes {
			n.SetObserver(observer)
		}
	}
	return r.Run(ctx)
}

func runList(ctx context.Context, specs []Spec, nodes []*Node, opts Options) error {
	if !opts.Concurrent || len(specs) < 2 {
		var errs []error
		for i := range specs {
			if ctx.Err() != nil {
				break
			}
			if err := runOne(ctx, specs[i], nodes[i]); err != nil {
				errs = append(errs, err)
				if opts.ExitOnError {
					break
				}
			}
		}
		return joined(ctx, errs)
	}

	g := &errgroup.Group{}
	gctx := ctx
	if opts.ExitOnError {
		g, gctx = errgroup.WithContext(ctx)
	}
	if opts.Limit > 0 {
		g.SetLimit(opts.Limit)
	}

	var mu sync.Mutex
	var errs []error
	for i := range specs {
		if gctx.Err() != nil {
			break
		}
		spec, node := specs[i], nodes[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			err := runOne(gctx, spec, node)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return err
		})
	}
	_ = g.Wait()
	return joined(ctx, errs)
}

func joined(ctx context.Context, errs []error) error {
	if len(errs) == 0 {
		return ctx.Err()
	}
	return errors.Join(errs...)
}

func runOne(ctx context.Context, spec Spec, node *Node) error {
	node.Start()

	if spec.Run != nil {
		err := safeRun(ctx, spec.Run, node)
		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			// Canceled from outside: leave the node running so it is shown
			// as interrupted.
			return nil
		}
		if err != nil {
			node.Fail(err)
			return errors.Errorf("%s: %w", spec.Title, err)
		}
	}

	if node.State() == StateSkipped {
		skipDescendants(node, "parent skipped")
		return nil
	}

	if len(spec.Children) > 0 {
		if err := runList(ctx, spec.Children, node.Children(), spec.Options); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			node.Fail(nil)
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}

	node.Succeed()
	return nil
}

func safeRun(ctx context.Context, fn Func, node *Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WithDetails(errors.Errorf("%w: %v", ErrTaskPanicked, r), "task", node.Title())
		}
	}()
	return fn(ctx, node)
}

func skipDescendants(n *Node, reason string) {
	for _, c := range n.Children() {
		c.Skip(reason)
		skipDescendants(c, reason)
	}
}
