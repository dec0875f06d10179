package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/dianlight/tconsole"
	"github.com/dianlight/tconsole/task"
)

func main() {
	ctx := context.Background()

	fmt.Println("=== tconsole demonstration ===")
	fmt.Println()

	tconsole.SetLevel(tconsole.LevelTrace)
	slog.SetDefault(slog.New(tconsole.Handler("slog")))

	fmt.Println("1. All logging functions:")
	tconsole.Trace("This is a trace message")
	tconsole.Debug("This is a debug message")
	slog.Debug("This debug message went through slog")
	tconsole.Info("This is an info message", map[string]any{"component": "demo"})
	slog.Info("This info message went through slog", "component", "demo")
	tconsole.Success("This is a success message 🎉")
	tconsole.Warn("This is a warning message", map[string]any{"issue": "example"})
	tconsole.Error("This is an error message", errors.New("demonstration error"))
	tconsole.Title("This is a title")
	tconsole.Task("This is a task heading")
	tconsole.Plain("This is a plain line")

	fmt.Println()
	fmt.Println("2. Named loggers share one prefix column:")
	api := tconsole.NewLogger("api")
	database := tconsole.NewLogger("database")
	api.Info("Listening", map[string]any{"port": 8080})
	database.Info("Connected")
	api.Warn("Slow request", map[string]any{"path": "/users", "ms": 812})

	fmt.Println()
	fmt.Println("3. Context values through slog:")
	reqCtx := context.WithValue(ctx, "request_id", "demo-123") //nolint:staticcheck
	reqCtx = context.WithValue(reqCtx, "user_id", "user-456")  //nolint:staticcheck
	slog.InfoContext(reqCtx, "Request processed", "duration", 150*time.Millisecond)

	fmt.Println()
	fmt.Println("4. Errors with details and stack traces:")
	detailedErr := errors.WithDetails(
		errors.New("database connection failed"),
		"host", "localhost",
		"port", 5432,
	)
	tconsole.Error("Detailed error", detailedErr)
	slog.Error("Detailed error through slog", "error", detailedErr)
	tconsole.Error("Error from nested function calls", createDeepError())
	tconsole.Error("Multiple validation errors", errors.Join(
		errors.New("first validation error"),
		errors.WithDetails(errors.New("second validation error"), "field", "email"),
	))

	fmt.Println()
	fmt.Println("5. Unix timestamps through slog:")
	slog.Info("Unix timestamp formatting",
		"created_at", int64(1609459200),
		"updated_at", "1640995200")

	fmt.Println()
	fmt.Println("6. Pretty dump:")
	tconsole.Inspect(map[string]any{
		"service":  "checkout",
		"replicas": 3,
		"regions":  []string{"eu-west-1", "us-east-1"},
	})

	fmt.Println()
	fmt.Println("7. Hooks:")
	id := tconsole.RegisterHook(tconsole.LevelError, func(e tconsole.Event) {
		fmt.Printf("   hook saw %q\n", e.Message)
	})
	tconsole.Error("Something for the hook")
	tconsole.Shutdown()
	tconsole.UnregisterHook(tconsole.LevelError, id)

	fmt.Println()
	fmt.Println("8. Spinners:")
	_ = tconsole.Spin(ctx, "Uploading artifacts", func(context.Context) error {
		time.Sleep(400 * time.Millisecond)
		return nil
	})
	_ = tconsole.Spin(ctx, "Notifying webhook", func(context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return errors.New("timeout")
	})

	fmt.Println()
	fmt.Println("9. Task tree:")
	err := tconsole.RunTasks(ctx, []task.Spec{
		{Title: "Build", Run: sleep(300 * time.Millisecond)},
		{Title: "Test", Options: task.Options{Concurrent: true}, Children: []task.Spec{
			{Title: "unit", Run: sleep(500 * time.Millisecond)},
			{Title: "e2e", Run: func(ctx context.Context, n *task.Node) error {
				n.Output("starting browser")
				if err := sleep(400*time.Millisecond)(ctx, n); err != nil {
					return err
				}
				return errors.New("connection reset")
			}},
			{Title: "lint", Run: func(_ context.Context, n *task.Node) error {
				n.Skip("not configured")
				return nil
			}},
		}},
		{Title: "Deploy", Run: sleep(200 * time.Millisecond)},
	}, task.Options{})
	if err != nil {
		fmt.Printf("   run returned: %v\n", err)
	}

	fmt.Println("Demonstration complete.")
}

func sleep(d time.Duration) task.Func {
	return func(ctx context.Context, _ *task.Node) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	}
}

// Helper functions to create nested error stack traces
func createDeepError() errors.E {
	return levelOneFunction()
}

func levelOneFunction() errors.E {
	return levelTwoFunction()
}

func levelTwoFunction() errors.E {
	return errors.WithDetails(
		errors.WithStack(errors.New("deep nested error occurred")),
		"level", "two",
		"operation", "data_processing",
	)
}
