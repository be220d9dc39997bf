// Package tasks runs an ordered, optionally nested list of titled steps
// against a shared run context.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomas-vilte/matebackport/internal/logger"
)

// Task is one titled step. A task either has a Run body or Subtasks; when it
// has both, Run executes first.
type Task[C any] struct {
	Title    string
	Run      func(ctx context.Context, rc C) error
	Subtasks []Task[C]
}

// Reporter receives progress events. Depth is 0 for top-level tasks.
type Reporter interface {
	Started(title string, depth int, leaf bool)
	Succeeded(title string, depth int, leaf bool)
	Failed(title string, depth int, leaf bool, err error)
}

// Error is returned when a task fails and names the failing task path.
type Error struct {
	Path []string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", strings.Join(e.Path, " › "), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Runner[C any] struct {
	reporter Reporter
}

func NewRunner[C any](reporter Reporter) *Runner[C] {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Runner[C]{reporter: reporter}
}

// Run executes tasks in order, depth first, and stops at the first failure.
func (r *Runner[C]) Run(ctx context.Context, rc C, tasks []Task[C]) error {
	return r.run(ctx, rc, tasks, nil)
}

func (r *Runner[C]) run(ctx context.Context, rc C, tasks []Task[C], path []string) error {
	depth := len(path)
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}

		taskPath := append(append([]string(nil), path...), task.Title)
		leaf := len(task.Subtasks) == 0
		r.reporter.Started(task.Title, depth, leaf)
		logger.Debug(ctx, "task started", "task", strings.Join(taskPath, " › "))

		if task.Run != nil {
			if err := task.Run(ctx, rc); err != nil {
				r.reporter.Failed(task.Title, depth, leaf, err)
				return &Error{Path: taskPath, Err: err}
			}
		}

		if !leaf {
			if err := r.run(ctx, rc, task.Subtasks, taskPath); err != nil {
				r.reporter.Failed(task.Title, depth, leaf, err)
				return err
			}
		}

		r.reporter.Succeeded(task.Title, depth, leaf)
	}
	return nil
}

type nopReporter struct{}

func (nopReporter) Started(string, int, bool) {}

func (nopReporter) Succeeded(string, int, bool) {}

func (nopReporter) Failed(string, int, bool, error) {}
