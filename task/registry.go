package task

import (
	"io"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"gitlab.com/tozd/go/errors"
)

// DefaultRotation is how often the primary spinner changes when several
// are active.
const DefaultRotation = 2 * time.Second

// Session is one active spinner.
type Session struct {
	key  string
	node *Node

	done chan struct{}
	once sync.Once
	err  error
}

func newSession(key string, node *Node) *Session {
	return &Session{key: key, node: node, done: make(chan struct{})}
}

func (s *Session) Key() string { return s.key }

func (s *Session) Node() *Node { return s.node }

// Done is closed when the session completes.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session completes and returns its result: nil for
// Succeed, Warn and Info, an ErrSpinnerFailed error for Fail and ErrStopped
// for Stop.
func (s *Session) Wait() error {
	<-s.done
	return s.err
}

func (s *Session) complete(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.done)
	})
}

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	Render RenderOptions
	// Rotation is the primary rotation interval. Defaults to DefaultRotation.
	Rotation time.Duration
	// OnRotate is called with the new primary key after each rotation.
	OnRotate func(primary string)
}

// Registry keeps named spinners. All active sessions share one Renderer,
// created with the first session and finished when the last completes.
type Registry struct {
	mu       sync.Mutex
	w        io.Writer
	opts     RegistryOptions
	sessions map[string]*Session
	order    []string
	primary  int
	renderer *Renderer
	rotation *scheduler
}

// NewRegistry returns an empty Registry drawing to w.
func NewRegistry(w io.Writer, opts RegistryOptions) *Registry {
	if opts.Rotation <= 0 {
		opts.Rotation = DefaultRotation
	}
	return &Registry{
		w:        w,
		opts:     opts,
		sessions: map[string]*Session{},
	}
}

// Start registers a running spinner under key. Starting a key that is
// still active returns ErrDuplicateKey.
func (r *Registry) Start(key, title string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[key]; ok {
		return nil, errors.WithDetails(ErrDuplicateKey, "key", key)
	}

	if r.renderer == nil {
		r.renderer = NewRenderer(r.w, r.opts.Render)
		r.renderer.Start()
	}

	node := NewNode(title)
	s := newSession(key, node)
	r.sessions[key] = s
	r.order = append(r.order, key)
	r.renderer.Attach(node)
	node.Start()

	if len(r.order) > 1 && r.rotation == nil {
		r.rotation = startScheduler(r.opts.Rotation, r.Rotate)
	}
	return s, nil
}

// Update replaces the text of an active spinner. Unknown keys are ignored.
func (r *Registry) Update(key, text string) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	r.mu.Unlock()
	if ok {
		s.node.SetTitle(text)
	}
}

// Output appends a progress line under an active spinner.
func (r *Registry) Output(key, line string) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	r.mu.Unlock()
	if ok {
		s.node.Output(line)
	}
}

// Stop removes a spinner from the display without a final line and
// completes its session with ErrStopped. Unknown keys are ignored.
func (r *Registry) Stop(key string) {
	r.end(key, func(s *Session) error {
		r.renderer.Remove(s.node)
		return errors.WithDetails(ErrStopped, "key", key)
	})
}

// Succeed ends a spinner successfully. A non-empty text replaces its title.
func (r *Registry) Succeed(key string, text ...string) {
	r.end(key, func(s *Session) error {
		retitle(s.node, text)
		s.node.Succeed()
		return nil
	})
}

// Fail ends a spinner as failed and completes its session with an
// ErrSpinnerFailed error.
func (r *Registry) Fail(key string, text ...string) {
	r.end(key, func(s *Session) error {
		msg := retitle(s.node, text)
		s.node.Fail(nil)
		return errors.WithDetails(errors.Errorf("%w: %s", ErrSpinnerFailed, msg), "key", key)
	})
}

// FailErr ends a spinner as failed with cause, which is shown after the
// title and wrapped into the session error. A nil cause behaves like Fail
// without text.
func (r *Registry) FailErr(key string, cause error) {
	if cause == nil {
		r.Fail(key)
		return
	}
	r.end(key, func(s *Session) error {
		s.node.Fail(cause)
		return errors.WithDetails(errors.Errorf("%w: %s", ErrSpinnerFailed, cause.Error()), "key", key)
	})
}

// Warn ends a spinner successfully with a warning glyph.
func (r *Registry) Warn(key string, text ...string) {
	r.end(key, func(s *Session) error {
		retitle(s.node, text)
		s.node.Complete(MarkWarn)
		return nil
	})
}

// Info ends a spinner successfully with an info glyph.
func (r *Registry) Info(key string, text ...string) {
	r.end(key, func(s *Session) error {
		retitle(s.node, text)
		s.node.Complete(MarkInfo)
		return nil
	})
}

// StopAll stops every active spinner.
func (r *Registry) StopAll() {
	for _, key := range r.Active() {
		r.Stop(key)
	}
}

func retitle(n *Node, text []string) string {
	if len(text) > 0 && text[0] != "" {
		n.SetTitle(text[0])
		return text[0]
	}
	return n.Title()
}

// end completes the session under key with the result of fn, and
// finishes the shared renderer when no session is left.
func (r *Registry) end(key string, fn func(*Session) error) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	err := fn(s)

	delete(r.sessions, key)
	if idx := lo.IndexOf(r.order, key); idx >= 0 && idx < r.primary {
		r.primary--
	}
	r.order = lo.Without(r.order, key)
	if r.primary >= len(r.order) {
		r.primary = 0
	}

	var rotation *scheduler
	if len(r.order) == 0 {
		r.renderer.Finish()
		r.renderer = nil
		rotation = r.rotation
		r.rotation = nil
	} else {
		r.renderer.Refresh()
	}
	r.mu.Unlock()

	// The rotation tick takes r.mu, so it is stopped after unlocking.
	if rotation != nil {
		rotation.stop()
	}
	s.complete(err)
}

// Rotate advances the primary key when more than one spinner is active.
func (r *Registry) Rotate() {
	r.mu.Lock()
	if len(r.order) < 2 {
		r.mu.Unlock()
		return
	}
	r.primary = (r.primary + 1) % len(r.order)
	primary := r.order[r.primary]
	r.mu.Unlock()

	if r.opts.OnRotate != nil {
		r.opts.OnRotate(primary)
	}
}

// Primary returns the key currently in the foreground, or "" when idle.
func (r *Registry) Primary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) == 0 {
		return ""
	}
	return r.order[r.primary]
}

// Active returns the active keys in start order.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Has reports whether key is active.
func (r *Registry) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[key]
	return ok
}

// Renderer returns the shared renderer, or nil when no spinner is active.
func (r *Registry) Renderer() *Renderer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderer
}
