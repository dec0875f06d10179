package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dianlight/tconsole/capability"
	"github.com/dianlight/tconsole/config"
)

// capsReport is the output of the caps command.
type capsReport struct {
	Profile capability.Profile `json:"profile"`
	Config  *configReport      `json:"config,omitempty"`
}

type configReport struct {
	Level     string                   `json:"level"`
	JSON      bool                     `json:"json"`
	Timestamp string                   `json:"timestamp"`
	Prefix    bool                     `json:"prefix"`
	Icons     bool                     `json:"icons"`
	Redact    bool                     `json:"redact"`
	Sources   map[string]config.Source `json:"sources"`
}

func newConfigReport(cfg config.Config) *configReport {
	timestamp := "off"
	if cfg.ShowTimestamp {
		timestamp = string(cfg.TimestampFormat)
	}
	return &configReport{
		Level:     config.LevelName(cfg.Level),
		JSON:      cfg.JSON,
		Timestamp: timestamp,
		Prefix:    cfg.ShowPrefix,
		Icons:     cfg.ShowIcons,
		Redact:    cfg.Redact,
		Sources:   cfg.Sources,
	}
}

func (a *app) capsCommand() *cobra.Command {
	var withConfig bool
	cmd := &cobra.Command{
		Use:   "caps",
		Short: "Print the detected terminal capabilities as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := capsReport{Profile: a.console.Capabilities()}
			if withConfig {
				report.Config = newConfigReport(a.console.Config())
			}
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&withConfig, "config", false, "include the resolved output configuration")
	return cmd
}
