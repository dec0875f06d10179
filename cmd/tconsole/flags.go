package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dianlight/tconsole/config"
)

// Flags holds the global output flags. A flag that was not given leaves
// the environment's value in place.
type Flags struct {
	Level     string
	JSON      bool
	Timestamp string
	NoPrefix  bool
	NoIcons   bool
	Redact    bool
}

// NewFlags returns Flags with zero values.
func NewFlags() *Flags {
	return &Flags{}
}

// sourceFlag marks settings taken from the command line.
const sourceFlag config.Source = "flag"

var timestampValues = []string{"off", string(config.TimestampClock), string(config.TimestampISO)}

// RegisterFlags adds the output flags to flags.
func (f *Flags) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&f.Level, "log-level", "",
		fmt.Sprintf("minimum level, one of: %s", strings.Join(config.SupportedLevels(), ", ")))
	flags.BoolVar(&f.JSON, "json", false, "write one JSON record per line")
	flags.StringVar(&f.Timestamp, "timestamp", "",
		fmt.Sprintf("timestamp layout, one of: %s", strings.Join(timestampValues, ", ")))
	flags.BoolVar(&f.NoPrefix, "no-prefix", false, "hide the level label and logger name")
	flags.BoolVar(&f.NoIcons, "no-icons", false, "hide level icons")
	flags.BoolVar(&f.Redact, "redact", false, "mask credentials in messages and arguments")
}

// RegisterCompletions registers shell completions for the flags on cmd.
func (f *Flags) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(config.SupportedLevels(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-level completion: %w", err)
	}
	err = cmd.RegisterFlagCompletionFunc("timestamp",
		cobra.FixedCompletions(timestampValues, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering timestamp completion: %w", err)
	}
	return nil
}

// Apply returns a configuration adjustment for the flags set on flags, or
// nil when none was given.
func (f *Flags) Apply(flags *pflag.FlagSet) func(*config.Config) {
	var fns []func(*config.Config)
	if flags.Changed("log-level") {
		level := config.LevelOrDefault(f.Level)
		fns = append(fns, func(cfg *config.Config) {
			cfg.Level = level
			cfg.Sources["level"] = sourceFlag
		})
	}
	if flags.Changed("json") {
		json := f.JSON
		fns = append(fns, func(cfg *config.Config) {
			cfg.JSON = json
			cfg.Sources["json"] = sourceFlag
			if json {
				cfg.Colors = false
			}
		})
	}
	if flags.Changed("timestamp") {
		show, layout := parseTimestamp(f.Timestamp)
		fns = append(fns, func(cfg *config.Config) {
			cfg.ShowTimestamp, cfg.TimestampFormat = show, layout
			cfg.Sources["timestamp"] = sourceFlag
		})
	}
	if flags.Changed("no-prefix") {
		show := !f.NoPrefix
		fns = append(fns, func(cfg *config.Config) {
			cfg.ShowPrefix = show
			cfg.Sources["prefix"] = sourceFlag
		})
	}
	if flags.Changed("no-icons") {
		show := !f.NoIcons
		fns = append(fns, func(cfg *config.Config) {
			cfg.ShowIcons = show
			cfg.Sources["icons"] = sourceFlag
		})
	}
	if flags.Changed("redact") {
		redact := f.Redact
		fns = append(fns, func(cfg *config.Config) {
			cfg.Redact = redact
			cfg.Sources["redact"] = sourceFlag
		})
	}

	if len(fns) == 0 {
		return nil
	}
	return func(cfg *config.Config) {
		for _, fn := range fns {
			fn(cfg)
		}
	}
}

func parseTimestamp(value string) (bool, config.TimestampFormat) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "off", "false", "0", "no":
		return false, config.TimestampClock
	case string(config.TimestampISO):
		return true, config.TimestampISO
	default:
		return true, config.TimestampClock
	}
}
