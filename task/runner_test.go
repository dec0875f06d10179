package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func ok(context.Context, *Node) error { return nil }

func fail(msg string) Func {
	return func(context.Context, *Node) error { return errors.New(msg) }
}

func TestRunSequentialContinuesAfterFailure(t *testing.T) {
	r := NewRunner([]Spec{
		{Title: "a", Run: fail("boom")},
		{Title: "b", Run: ok},
		{Title: "c", Run: fail("bang")},
	}, Options{})

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: boom")
	assert.Contains(t, err.Error(), "c: bang")

	nodes := r.Nodes()
	assert.Equal(t, StateFailed, nodes[0].State())
	assert.Equal(t, StateSucceeded, nodes[1].State())
	assert.Equal(t, StateFailed, nodes[2].State())
}

func TestRunSequentialExitOnError(t *testing.T) {
	r := NewRunner([]Spec{
		{Title: "a", Run: fail("boom")},
		{Title: "b", Run: ok},
	}, Options{ExitOnError: true})

	require.Error(t, r.Run(context.Background()))
	assert.Equal(t, StateFailed, r.Nodes()[0].State())
	assert.Equal(t, StatePending, r.Nodes()[1].State())
}

func TestRunConcurrentExitOnErrorLeavesSiblingsRunning(t *testing.T) {
	started := make(chan struct{})
	r := NewRunner([]Spec{
		{Title: "slow", Run: func(ctx context.Context, _ *Node) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}},
		{Title: "fast", Run: func(context.Context, *Node) error {
			<-started
			return errors.New("boom")
		}},
	}, Options{Concurrent: true, ExitOnError: true})

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fast: boom")
	assert.NotErrorIs(t, err, context.Canceled)

	assert.Equal(t, StateRunning, r.Nodes()[0].State())
	assert.Equal(t, StateFailed, r.Nodes()[1].State())
}

func TestRunConcurrentWithoutExitOnErrorRunsAll(t *testing.T) {
	var done atomic.Int32
	body := func(context.Context, *Node) error {
		done.Add(1)
		return nil
	}
	r := NewRunner([]Spec{
		{Title: "a", Run: fail("x")},
		{Title: "b", Run: body},
		{Title: "c", Run: body},
	}, Options{Concurrent: true})

	require.Error(t, r.Run(context.Background()))
	assert.EqualValues(t, 2, done.Load())
}

func TestRunConcurrentLimit(t *testing.T) {
	var running, peak atomic.Int32
	body := func(context.Context, *Node) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return nil
	}
	specs := make([]Spec, 6)
	for i := range specs {
		specs[i] = Spec{Title: "t", Run: body}
	}

	require.NoError(t, Run(context.Background(), specs, Options{Concurrent: true, Limit: 2}, nil))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunPanicBecomesFailure(t *testing.T) {
	r := NewRunner([]Spec{{Title: "p", Run: func(context.Context, *Node) error {
		panic("kaboom")
	}}}, Options{})

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskPanicked)
	assert.Contains(t, err.Error(), "kaboom")
	assert.Equal(t, StateFailed, r.Nodes()[0].State())
}

func TestRunParentFailsWhenChildFails(t *testing.T) {
	r := NewRunner([]Spec{{
		Title: "parent",
		Children: []Spec{
			{Title: "one", Run: ok},
			{Title: "two", Run: fail("nope")},
		},
	}}, Options{})

	err := r.Run(context.Background())
	require.Error(t, err)
	parent := r.Nodes()[0]
	assert.Equal(t, StateFailed, parent.State())
	assert.NoError(t, parent.Err())
	assert.Equal(t, StateSucceeded, parent.Children()[0].State())
	assert.Equal(t, StateFailed, parent.Children()[1].State())
}

func TestRunSkipSkipsChildren(t *testing.T) {
	r := NewRunner([]Spec{{
		Title: "optional",
		Run: func(_ context.Context, n *Node) error {
			n.Skip("disabled")
			return nil
		},
		Children: []Spec{{Title: "inner", Run: ok}},
	}}, Options{})

	require.NoError(t, r.Run(context.Background()))
	n := r.Nodes()[0]
	assert.Equal(t, StateSkipped, n.State())
	assert.Equal(t, StateSkipped, n.Children()[0].State())
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner([]Spec{{Title: "never", Run: ok}}, Options{})
	assert.ErrorIs(t, r.Run(ctx), context.Canceled)
	assert.Equal(t, StatePending, r.Nodes()[0].State())
}

type recordingObserver struct {
	mu          sync.Mutex
	transitions []string
	output      []string
}

func (o *recordingObserver) StateChanged(n *Node, _, to State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, n.Title()+":"+to.String())
}

func (o *recordingObserver) OutputAppended(_ *Node, line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.output = append(o.output, line)
}

func (o *recordingObserver) TitleChanged(*Node) {}

func TestRunNotifiesObserver(t *testing.T) {
	obs := &recordingObserver{}
	err := Run(context.Background(), []Spec{{
		Title: "job",
		Run: func(_ context.Context, n *Node) error {
			n.Output("step 1")
			return nil
		},
		Children: []Spec{{Title: "sub"}},
	}}, Options{}, obs)

	require.NoError(t, err)
	assert.Equal(t, []string{"job:running", "sub:running", "sub:succeeded", "job:succeeded"}, obs.transitions)
	assert.Equal(t, []string{"step 1"}, obs.output)
}

func TestNodeTransitions(t *testing.T) {
	n := NewNode("x")
	assert.True(t, n.Skip("later"))
	assert.False(t, n.Start())
	assert.Equal(t, StateSkipped, n.State())

	n = NewNode("y")
	assert.True(t, n.Start())
	assert.False(t, n.Start())
	assert.True(t, n.Fail(nil))
	assert.False(t, n.Succeed())
	assert.Equal(t, StateFailed, n.State())
	assert.True(t, n.State().Terminal())
	assert.Equal(t, 1, n.AddChild("c").Depth())
}
