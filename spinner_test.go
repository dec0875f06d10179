package tconsole_test

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"gitlab.com/tozd/go/errors"

	"github.com/dianlight/tconsole"
	"github.com/dianlight/tconsole/task"
)

var escape = regexp.MustCompile(`^\x1b\[[0-9;?]*[A-Za-z]`)

// screen replays the cursor-up and erase sequences of an animated console
// and returns the rows left on the terminal.
func screen(s string) []string {
	var rows []string
	row, col := 0, 0
	cut := func() {
		if row < len(rows) && col < len(rows[row]) {
			rows[row] = rows[row][:col]
		}
	}
	for len(s) > 0 {
		switch {
		case strings.HasPrefix(s, "\x1b[A"):
			row = max(row-1, 0)
			s = s[3:]
		case strings.HasPrefix(s, "\x1b[K"):
			cut()
			s = s[3:]
		case strings.HasPrefix(s, "\x1b[J"):
			cut()
			if row+1 < len(rows) {
				rows = rows[:row+1]
			}
			s = s[3:]
		case s[0] == '\r':
			col = 0
			s = s[1:]
		case s[0] == '\n':
			row, col = row+1, 0
			s = s[1:]
		case escape.MatchString(s):
			s = s[len(escape.FindString(s)):]
		default:
			i := strings.IndexAny(s[1:], "\r\n\x1b") + 1
			if i == 0 {
				i = len(s)
			}
			for len(rows) <= row {
				rows = append(rows, "")
			}
			cut()
			rows[row] += s[:i]
			col = len(rows[row])
			s = s[i:]
		}
	}
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}
	return rows
}

type SpinnerSuite struct {
	suite.Suite
	out     *syncBuffer
	console *tconsole.Console
}

func (suite *SpinnerSuite) SetupTest() {
	suite.out = &syncBuffer{}
	suite.console = newConsole(suite.out, baseEnv())
}

func (suite *SpinnerSuite) TearDownTest() {
	suite.console.Shutdown()
}

func (suite *SpinnerSuite) TestDuplicateKeyAndReuse() {
	sp, err := suite.console.Spinner("build", "Building")
	suite.Require().NoError(err)

	_, err = suite.console.Spinner("build", "Building twice")
	suite.ErrorIs(err, task.ErrDuplicateKey)

	sp.Update("Linking")
	sp.Output("ld: ok")
	sp.Succeed()
	suite.NoError(sp.Wait())

	// Calls after completion are ignored.
	sp.Fail("too late")

	again, err := suite.console.Spinner("build", "Rebuilding")
	suite.Require().NoError(err)
	again.Warn()
	suite.NoError(again.Wait())

	suite.Equal([]string{"✔ Linking", "⚠ Rebuilding"}, suite.out.Lines())
}

func (suite *SpinnerSuite) TestSpinSuccessAndFailure() {
	ctx := context.Background()
	suite.NoError(suite.console.Spin(ctx, "Uploading", func(context.Context) error { return nil }))

	cause := errors.New("timeout")
	err := suite.console.Spin(ctx, "Uploading", func(context.Context) error { return cause })
	suite.ErrorIs(err, cause)

	suite.Equal([]string{"✔ Uploading", "✖ Uploading › timeout"}, suite.out.Lines())
}

func (suite *SpinnerSuite) TestSpinPanic() {
	suite.PanicsWithValue("boom", func() {
		_ = suite.console.Spin(context.Background(), "Crashing", func(context.Context) error { panic("boom") })
	})
	suite.Equal([]string{"✖ Crashing › panic: boom"}, suite.out.Lines())
}

func (suite *SpinnerSuite) TestLogDuringAnimatedSpin() {
	out := &syncBuffer{}
	console := newConsole(out, baseEnv("FORCE_COLOR", "1"), tconsole.WithTerminal(true))
	defer console.Shutdown()

	err := console.Spin(context.Background(), "Syncing", func(context.Context) error {
		console.Logger("").Info("hello from task")
		return nil
	})
	suite.Require().NoError(err)

	raw := out.String()
	suite.Contains(raw, "\r\x1b[J")
	rows := screen(raw)
	suite.Require().Len(rows, 2, raw)
	suite.Contains(rows[0], "hello from task")
	suite.Contains(rows[1], "✔ Syncing")
}

func (suite *SpinnerSuite) TestLogDuringAnimatedTaskRun() {
	out := &syncBuffer{}
	console := newConsole(out, baseEnv("FORCE_COLOR", "1"), tconsole.WithTerminal(true))
	defer console.Shutdown()

	err := console.RunTasks(context.Background(), []task.Spec{{
		Title: "Build",
		Run: func(context.Context, *task.Node) error {
			console.Logger("").Warn("cache miss")
			return nil
		},
	}}, task.Options{})
	suite.Require().NoError(err)

	rows := screen(out.String())
	suite.Require().Len(rows, 2, out.String())
	suite.Contains(rows[0], "cache miss")
	suite.Contains(rows[1], "✔ Build")
}

func (suite *SpinnerSuite) TestFailErr() {
	sp, err := suite.console.Spinner("db", "Migrating")
	suite.Require().NoError(err)
	sp.FailErr(errors.New("locked"))

	suite.ErrorIs(sp.Wait(), task.ErrSpinnerFailed)
	suite.Equal([]string{"✖ Migrating › locked"}, suite.out.Lines())
}

func (suite *SpinnerSuite) TestRunTasksFailureSummary() {
	err := suite.console.RunTasks(context.Background(), []task.Spec{
		{Title: "deploy", Run: func(context.Context, *task.Node) error { return errors.New("connection reset") }},
	}, task.Options{})

	suite.Error(err)
	suite.Contains(err.Error(), "connection reset")
	suite.Equal([]string{"✖ deploy › connection reset", "✖ 1 of 1 tasks failed"}, suite.out.Lines())
}

func (suite *SpinnerSuite) TestRunTasksTree() {
	ok := func(context.Context, *task.Node) error { return nil }
	err := suite.console.RunTasks(context.Background(), []task.Spec{
		{Title: "Build", Run: ok},
		{Title: "Test", Children: []task.Spec{
			{Title: "unit", Run: ok},
			{Title: "lint", Run: func(_ context.Context, n *task.Node) error {
				n.Skip("not configured")
				return nil
			}},
		}},
	}, task.Options{ExitOnError: true})

	suite.NoError(err)
	suite.Equal([]string{
		"✔ Build",
		"  ✔ unit",
		"  ↓ lint [SKIPPED: not configured]",
		"✔ Test",
	}, suite.out.Lines())
}

func (suite *SpinnerSuite) TestRunTasksStopsSpinners() {
	sp, err := suite.console.Spinner("fetch", "Fetching")
	suite.Require().NoError(err)

	suite.NoError(suite.console.RunTasks(context.Background(), []task.Spec{
		{Title: "Build", Run: func(context.Context, *task.Node) error { return nil }},
	}, task.Options{}))

	suite.ErrorIs(sp.Wait(), task.ErrStopped)
	suite.Equal([]string{"✔ Build"}, suite.out.Lines())

	// The key is free again.
	_, err = suite.console.Spinner("fetch", "Fetching again")
	suite.NoError(err)
}

func (suite *SpinnerSuite) TestRunTasksInterrupted() {
	ctx, cancel := context.WithCancel(context.Background())
	err := suite.console.RunTasks(ctx, []task.Spec{
		{Title: "Wait", Run: func(ctx context.Context, _ *task.Node) error {
			cancel()
			<-ctx.Done()
			return ctx.Err()
		}},
	}, task.Options{})

	suite.ErrorIs(err, context.Canceled)
	suite.Equal([]string{"… Wait", "⚠ Task run interrupted"}, suite.out.Lines())
}

func (suite *SpinnerSuite) TestRunTasksJSON() {
	c := newConsole(suite.out, baseEnv("TCONSOLE_JSON", "1"))
	suite.NoError(c.RunTasks(context.Background(), []task.Spec{
		{Title: "Build", Run: func(_ context.Context, n *task.Node) error {
			n.Output("compiled")
			return nil
		}},
	}, task.Options{}))

	lines := suite.out.Lines()
	suite.Require().Len(lines, 2)
	var running, done map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(lines[0]), &running))
	suite.Require().NoError(json.Unmarshal([]byte(lines[1]), &done))
	suite.Equal("running", running["task"].(map[string]any)["status"])
	finished := done["task"].(map[string]any)
	suite.Equal("succeeded", finished["status"])
	suite.Equal("Build", finished["title"])
	suite.Contains(finished, "duration")
	suite.NotContains(finished, "output")
}

func TestSpinnerSuite(t *testing.T) {
	suite.Run(t, new(SpinnerSuite))
}
