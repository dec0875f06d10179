// Package tconsole provides capability-aware console output for command
// line tools: leveled log lines, named spinners and live task trees.
//
// Output adapts to the terminal it runs on. Colors, Unicode icons and
// emoji are used only where supported, CI runs get one complete line per
// event, and JSON mode writes one record per line.
//
// # Basic Usage
//
//	func main() {
//	    tconsole.Info("Starting build", map[string]any{"target": "linux"})
//
//	    log := tconsole.NewLogger("deploy")
//	    log.Success("Deployed 🚀")
//
//	    err := tconsole.RunTasks(ctx, []task.Spec{
//	        {Title: "Build", Run: build},
//	        {Title: "Test", Run: test, Children: []task.Spec{
//	            {Title: "unit", Run: unit},
//	            {Title: "e2e", Run: e2e},
//	        }, Options: task.Options{Concurrent: true}},
//	    }, task.Options{ExitOnError: true})
//	}
//
// # Configuration
//
// Everything is read from the environment, with TCONSOLE_ as prefix:
// TCONSOLE_LOG_LEVEL, TCONSOLE_JSON, TCONSOLE_TIMESTAMP (truthy or "iso"),
// TCONSOLE_SHOW_PREFIX, TCONSOLE_SHOW_ICONS, TCONSOLE_REDACT and the color,
// emoji and Unicode toggles. NO_COLOR, FORCE_COLOR and the usual CI
// markers are honored. Explicit settings win over CI defaults, which win
// over interactive defaults.
//
// A Console holds one resolved configuration. The package-level functions
// use Default(); tests create their own with New and WithEnv, WithWriter
// and WithTerminal, or call Reset.
//
// # Errors
//
// Errors passed as arguments are written as {name, message, stack}. Stack
// traces and details of gitlab.com/tozd/go/errors values are kept:
//
//	err := errors.WithDetails(errors.New("connect failed"), "host", "db1")
//	tconsole.Error("Migration failed", err)
//
// # slog
//
// Console.Handler returns a slog.Handler writing through a named logger,
// so existing slog call sites get the same output:
//
//	slog.SetDefault(slog.New(tconsole.Handler("app")))
//
// Set TCONSOLE_DEBUG to see what the console itself decided and did.
package tconsole
