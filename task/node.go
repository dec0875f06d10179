// Package task renders live progress for trees of tasks.
//
// A Node is one task. Its state moves pending → running → one of
// succeeded, failed or skipped. A Renderer subscribes to the nodes it
// displays and either animates them in place on an interactive terminal or
// writes one line (or JSON record) per completed transition. Runner executes
// a tree of Specs against nodes, and Registry manages named spinners that
// share a single Renderer.
package task

import (
	"sync"
	"time"
)

// State is the lifecycle position of a Node.
type State int

const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateSkipped
)

var stateNames = map[State]string{
	StatePending:   "pending",
	StateRunning:   "running",
	StateSucceeded: "succeeded",
	StateFailed:    "failed",
	StateSkipped:   "skipped",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateSkipped
}

// Mark changes how a succeeded node is displayed.
type Mark int

const (
	MarkNone Mark = iota
	MarkWarn
	MarkInfo
)

// Observer is notified about node changes. Callbacks run on the goroutine
// that changed the node, after the node's own lock is released.
type Observer interface {
	StateChanged(n *Node, from, to State)
	OutputAppended(n *Node, line string)
	TitleChanged(n *Node)
}

// now is replaced in tests.
var now = time.Now

// Node is one task in a tree.
type Node struct {
	mu         sync.RWMutex
	title      string
	state      State
	output     []string
	children   []*Node
	parent     *Node
	startedAt  time.Time
	finishedAt time.Time
	skipReason string
	err        error
	mark       Mark
	observer   Observer
}

// NewNode returns a pending node.
func NewNode(title string) *Node {
	return &Node{title: title}
}

// AddChild appends a pending child and returns it. The child inherits the
// parent's observer.
func (n *Node) AddChild(title string) *Node {
	child := NewNode(title)
	n.mu.Lock()
	child.parent = n
	child.observer = n.observer
	n.children = append(n.children, child)
	n.mu.Unlock()
	return child
}

// SetObserver subscribes o to n and all of its descendants.
func (n *Node) SetObserver(o Observer) {
	n.mu.Lock()
	n.observer = o
	children := n.children
	n.mu.Unlock()
	for _, c := range children {
		c.SetObserver(o)
	}
}

func (n *Node) Title() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.title
}

// SetTitle replaces the title.
func (n *Node) SetTitle(title string) {
	n.mu.Lock()
	n.title = title
	o := n.observer
	n.mu.Unlock()
	if o != nil {
		o.TitleChanged(n)
	}
}

func (n *Node) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Err returns the failure cause, if any.
func (n *Node) Err() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.err
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Depth is 0 for a root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parentNode(); p != nil; p = p.parentNode() {
		d++
	}
	return d
}

func (n *Node) parentNode() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Duration is the running time, up to now for a node still running.
func (n *Node) Duration() time.Duration {
	n.mu.RLock()
	defer n.mu.RUnlock()
	switch {
	case n.startedAt.IsZero():
		return 0
	case n.finishedAt.IsZero():
		return now().Sub(n.startedAt)
	}
	return n.finishedAt.Sub(n.startedAt)
}

// Output appends one line of progress text.
func (n *Node) Output(line string) {
	n.mu.Lock()
	n.output = append(n.output, line)
	o := n.observer
	n.mu.Unlock()
	if o != nil {
		o.OutputAppended(n, line)
	}
}

// Start moves a pending node to running.
func (n *Node) Start() bool {
	return n.transition(StateRunning, func() { n.startedAt = now() })
}

// Succeed ends the node successfully.
func (n *Node) Succeed() bool {
	return n.finish(StateSucceeded, nil, MarkNone, "")
}

// Fail ends the node as failed. err may be nil.
func (n *Node) Fail(err error) bool {
	return n.finish(StateFailed, err, MarkNone, "")
}

// Skip ends the node as skipped with an optional reason.
func (n *Node) Skip(reason string) bool {
	return n.finish(StateSkipped, nil, MarkNone, reason)
}

// Complete ends the node successfully with a display mark.
func (n *Node) Complete(mark Mark) bool {
	return n.finish(StateSucceeded, nil, mark, "")
}

func (n *Node) finish(to State, err error, mark Mark, reason string) bool {
	return n.transition(to, func() {
		if n.startedAt.IsZero() {
			n.startedAt = now()
		}
		n.finishedAt = now()
		n.err = err
		n.mark = mark
		n.skipReason = reason
	})
}

// transition applies a state change unless the node already ended.
func (n *Node) transition(to State, apply func()) bool {
	n.mu.Lock()
	from := n.state
	if from.Terminal() || from == to || (to == StateRunning && from != StatePending) {
		n.mu.Unlock()
		return false
	}
	n.state = to
	apply()
	o := n.observer
	n.mu.Unlock()
	if o != nil {
		o.StateChanged(n, from, to)
	}
	return true
}

// view is a consistent copy of a node used for rendering.
type view struct {
	node       *Node
	title      string
	state      State
	output     []string
	skipReason string
	err        error
	mark       Mark
	depth      int
	duration   time.Duration
}

func (n *Node) view() view {
	depth := n.Depth()
	d := n.Duration()
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.output))
	copy(out, n.output)
	return view{
		node:       n,
		title:      n.title,
		state:      n.state,
		output:     out,
		skipReason: n.skipReason,
		err:        n.err,
		mark:       n.mark,
		depth:      depth,
		duration:   d,
	}
}

// walk visits n and its descendants depth-first in declaration order.
func walk(nodes []*Node, fn func(*Node)) {
	for _, n := range nodes {
		fn(n)
		walk(n.Children(), fn)
	}
}
