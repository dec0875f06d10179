package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/dianlight/tconsole/emoji"
)

// errEmojiFound is returned by strip --check when the input has emoji.
var errEmojiFound = errors.Base("input contains emoji")

func (a *app) stripCommand() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "strip [text ...]",
		Short: "Remove emoji from text",
		Long: `strip removes emoji from its arguments, or from standard input line by line
when no argument is given. Spacing around removed emoji is collapsed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var lines []string
			if len(args) > 0 {
				lines = []string{strings.Join(args, " ")}
			} else {
				scanner := bufio.NewScanner(a.stdin)
				for scanner.Scan() {
					lines = append(lines, scanner.Text())
				}
				if err := scanner.Err(); err != nil {
					return errors.Wrap(err, "reading stdin")
				}
			}

			found := false
			for _, line := range lines {
				if emoji.Contains(line) {
					found = true
				}
				if check {
					continue
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), emoji.Strip(line)); err != nil {
					return err
				}
			}
			if check && found {
				return errEmojiFound
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "print nothing and fail when the input contains emoji")
	return cmd
}
