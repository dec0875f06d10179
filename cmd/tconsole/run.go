package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/dianlight/tconsole/task"
)

// ErrInvalidTaskFile is returned when a task file cannot be decoded.
var ErrInvalidTaskFile = errors.Base("invalid task file")

// TaskFile is the YAML document read by the run command.
//
//	exit_on_error: true
//	tasks:
//	  - title: Build
//	    sleep: 200ms
//	    output: [compiling, linking]
//	  - title: Test
//	    concurrent: true
//	    tasks:
//	      - title: unit
//	      - title: e2e
//	        fail: connection reset
type TaskFile struct {
	Policy `yaml:",inline"`
	Tasks  []TaskDef `yaml:"tasks"`
}

// Policy is the execution policy of one list of sibling tasks.
type Policy struct {
	Concurrent  bool `yaml:"concurrent"`
	Limit       int  `yaml:"limit"`
	ExitOnError bool `yaml:"exit_on_error"`
}

func (p Policy) options() task.Options {
	return task.Options{Concurrent: p.Concurrent, Limit: p.Limit, ExitOnError: p.ExitOnError}
}

// TaskDef declares one simulated task. The policy applies to its children.
type TaskDef struct {
	Policy `yaml:",inline"`
	Title  string        `yaml:"title"`
	Sleep  time.Duration `yaml:"sleep"`
	Output []string      `yaml:"output"`
	Fail   string        `yaml:"fail"`
	Skip   string        `yaml:"skip"`
	Tasks  []TaskDef     `yaml:"tasks"`
}

// ParseTaskFile decodes a task file. Unknown fields are rejected.
func ParseTaskFile(data []byte) (*TaskFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var file TaskFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.WrapWith(err, ErrInvalidTaskFile)
	}
	if len(file.Tasks) == 0 {
		return nil, errors.WithDetails(ErrInvalidTaskFile, "reason", "no tasks")
	}
	if err := validate(file.Tasks, "tasks"); err != nil {
		return nil, err
	}
	return &file, nil
}

func validate(defs []TaskDef, path string) error {
	for i, def := range defs {
		if def.Title == "" {
			return errors.WithDetails(ErrInvalidTaskFile, "reason", "missing title", "path", path, "index", i)
		}
		if def.Limit < 0 {
			return errors.WithDetails(ErrInvalidTaskFile, "reason", "negative limit", "task", def.Title)
		}
		if err := validate(def.Tasks, path+"."+def.Title); err != nil {
			return err
		}
	}
	return nil
}

// Specs converts the file into runnable task specs.
func (f *TaskFile) Specs() []task.Spec {
	return specs(f.Tasks)
}

func specs(defs []TaskDef) []task.Spec {
	out := make([]task.Spec, 0, len(defs))
	for _, def := range defs {
		out = append(out, task.Spec{
			Title:    def.Title,
			Run:      simulate(def),
			Children: specs(def.Tasks),
			Options:  def.Policy.options(),
		})
	}
	return out
}

// simulate returns a task body that writes the declared output, sleeps and
// then ends as declared.
func simulate(def TaskDef) task.Func {
	return func(ctx context.Context, n *task.Node) error {
		for _, line := range def.Output {
			n.Output(line)
		}
		if def.Sleep > 0 {
			timer := time.NewTimer(def.Sleep)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
		switch {
		case def.Fail != "":
			return errors.New(def.Fail)
		case def.Skip != "":
			n.Skip(def.Skip)
		}
		return nil
	}
}

func (a *app) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <tasks.yaml>",
		Short: "Run a task tree described in a YAML file",
		Long: `run renders a tree of simulated tasks. Each task may write output lines,
sleep, fail with a message or skip itself. Use "-" to read the file from
standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(a.stdin)
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return errors.WithStack(err)
			}
			file, err := ParseTaskFile(data)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := a.console.RunTasks(ctx, file.Specs(), file.Policy.options()); err != nil {
				return errors.WrapWith(err, errReported)
			}
			return nil
		},
	}
}
