package tconsole

import (
	"context"
	"fmt"

	"gitlab.com/tozd/go/errors"

	"github.com/dianlight/tconsole/config"
	"github.com/dianlight/tconsole/format"
	"github.com/dianlight/tconsole/task"
)

// Spinner is a handle on one named spinner. Calls after the spinner
// completed are ignored.
type Spinner struct {
	registry *task.Registry
	session  *task.Session
}

func (s *Spinner) Key() string { return s.session.Key() }

func (s *Spinner) done() bool {
	select {
	case <-s.session.Done():
		return true
	default:
		return false
	}
}

// Update replaces the spinner text.
func (s *Spinner) Update(text string) {
	if !s.done() {
		s.registry.Update(s.Key(), text)
	}
}

// Output adds a progress line under the spinner.
func (s *Spinner) Output(line string) {
	if !s.done() {
		s.registry.Output(s.Key(), line)
	}
}

func (s *Spinner) Succeed(text ...string) {
	if !s.done() {
		s.registry.Succeed(s.Key(), text...)
	}
}

func (s *Spinner) Fail(text ...string) {
	if !s.done() {
		s.registry.Fail(s.Key(), text...)
	}
}

// FailErr ends the spinner as failed showing err after its text.
func (s *Spinner) FailErr(err error) {
	if !s.done() {
		s.registry.FailErr(s.Key(), err)
	}
}

func (s *Spinner) Warn(text ...string) {
	if !s.done() {
		s.registry.Warn(s.Key(), text...)
	}
}

func (s *Spinner) Info(text ...string) {
	if !s.done() {
		s.registry.Info(s.Key(), text...)
	}
}

// Stop removes the spinner without a final line.
func (s *Spinner) Stop() {
	if !s.done() {
		s.registry.Stop(s.Key())
	}
}

// Wait blocks until the spinner completes. See task.Session.Wait.
func (s *Spinner) Wait() error { return s.session.Wait() }

func (c *Console) renderOptions(cfg config.Config) task.RenderOptions {
	return task.RenderOptions{
		Flags:       format.FlagsFrom(cfg),
		Interactive: cfg.Interactive && !cfg.CI,
		JSON:        cfg.JSON,
		Width:       task.TerminalWidth(c.raw),
		OnWriteError: func(err error) {
			c.diag.Warn("render write failed", "error", err)
		},
	}
}

// Spinners returns the console's spinner registry, creating it on first use.
func (c *Console) Spinners() *task.Registry {
	c.liveMu.Lock()
	defer c.liveMu.Unlock()
	return c.spinnersLocked()
}

func (c *Console) spinnersLocked() *task.Registry {
	if c.registry == nil {
		c.registry = task.NewRegistry(c.out, task.RegistryOptions{
			Render: c.renderOptions(c.Config()),
			OnRotate: func(primary string) {
				c.diag.Debug("spinner rotated", "primary", primary)
			},
		})
	}
	return c.registry
}

// Spinner starts a spinner under key. A task run still rendering is
// stopped first so only one renderer draws at a time. Starting a key that
// is still active returns task.ErrDuplicateKey.
func (c *Console) Spinner(key, title string) (*Spinner, error) {
	c.liveMu.Lock()
	live := c.live
	c.live = nil
	reg := c.spinnersLocked()
	c.liveMu.Unlock()
	if live != nil {
		c.diag.Debug("stopping task renderer for spinner", "key", key)
		live.Stop()
	}

	session, err := reg.Start(key, title)
	if err != nil {
		return nil, err
	}
	return &Spinner{registry: reg, session: session}, nil
}

// Spin shows title with a spinner while fn runs. The spinner succeeds when
// fn returns nil and fails showing the error otherwise. A panic in fn
// fails the spinner and is re-raised.
func (c *Console) Spin(ctx context.Context, title string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("spin-%d", c.spins.Add(1))
	sp, err := c.Spinner(key, title)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			sp.FailErr(errors.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	err = fn(ctx)
	if err != nil {
		sp.FailErr(err)
		return err
	}
	sp.Succeed()
	return nil
}

// RunTasks renders and runs a task tree. Active spinners are stopped
// first. When any task fails, one summary line is written at error level
// after the final frame and the joined task errors are returned.
func (c *Console) RunTasks(ctx context.Context, specs []task.Spec, opts task.Options) error {
	c.liveMu.Lock()
	reg := c.registry
	c.registry = nil
	c.liveMu.Unlock()
	if reg != nil && len(reg.Active()) > 0 {
		c.diag.Debug("stopping spinners for task run", "keys", reg.Active())
		reg.StopAll()
	}

	runner := task.NewRunner(specs, opts)
	r := task.NewRenderer(c.out, c.renderOptions(c.Config()))
	r.Attach(runner.Nodes()...)

	c.liveMu.Lock()
	c.live = r
	c.liveMu.Unlock()

	r.Start()
	err := runner.Run(ctx)
	r.Finish()

	c.liveMu.Lock()
	if c.live == r {
		c.live = nil
	}
	c.liveMu.Unlock()

	if err == nil {
		return nil
	}
	failed, total := countFailed(runner.Nodes())
	summary := &Logger{console: c}
	switch {
	case failed > 0:
		summary.Error(fmt.Sprintf("%d of %d tasks failed", failed, total))
	case ctx.Err() != nil:
		summary.Warn("Task run interrupted")
	}
	return err
}

// countFailed counts the tasks that failed on their own, as opposed to
// parents failed by a child, and all tasks.
func countFailed(nodes []*task.Node) (failed, total int) {
	for _, n := range nodes {
		children := n.Children()
		total++
		if n.State() == task.StateFailed && (n.Err() != nil || len(children) == 0) {
			failed++
		}
		f, t := countFailed(children)
		failed += f
		total += t
	}
	return failed, total
}
