package main

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/dianlight/tconsole/format"
)

func (a *app) logCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "log <kind> <message> [key=value ...]",
		Short: "Write one themed log line",
		Long: `log writes message with the theme of kind. Trailing key=value arguments are
written as one object. Fatal lines exit with status 1.`,
		Args: cobra.MinimumNArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			kinds := lo.Map(format.Kinds(), func(k format.Kind, _ int) string { return string(k) })
			return kinds, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(_ *cobra.Command, args []string) error {
			kind, err := format.ParseKind(args[0])
			if err != nil {
				return err
			}
			logger := a.console.Logger(name)
			var fields []any
			if kv := parseFields(args[2:]); len(kv) > 0 {
				fields = append(fields, kv)
			}
			if kind == format.KindFatal {
				logger.Fatal(args[1], fields...)
				return nil
			}
			return logger.Log(kind, args[1], fields...)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "logger name shown as [name]")
	return cmd
}

// parseFields turns key=value arguments into a map. Arguments without "="
// are stored under their position.
func parseFields(args []string) map[string]any {
	fields := map[string]any{}
	for i, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			key, value = "arg"+strconv.Itoa(i), arg
		}
		fields[key] = value
	}
	return fields
}
