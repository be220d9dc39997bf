package ui

import (
	"fmt"
	"io"
	"strings"
)

// TaskReporter prints task progress as an indented tree. When animate is set
// a single spinner is reused for every leaf task while it is in progress.
type TaskReporter struct {
	out     io.Writer
	animate bool
	spinner *SmartSpinner
	running bool
}

func NewTaskReporter(out io.Writer, animate bool) *TaskReporter {
	return &TaskReporter{out: out, animate: animate}
}

func (r *TaskReporter) Started(title string, depth int, leaf bool) {
	indent := strings.Repeat("  ", depth)
	if !leaf {
		_, _ = fmt.Fprintf(r.out, "%s%s %s\n", indent, Accent.Sprint("›"), title)
		return
	}
	if !r.animate {
		return
	}
	if r.spinner == nil {
		r.spinner = NewSpinner().WithWriter(r.out).Build()
	}
	r.spinner.UpdateMessage(indent + title)
	r.spinner.Start()
	r.running = true
}

func (r *TaskReporter) Succeeded(title string, depth int, leaf bool) {
	if !leaf {
		return
	}
	r.stop()
	_, _ = fmt.Fprintf(r.out, "%s%s %s\n", strings.Repeat("  ", depth), SuccessEmoji, title)
}

func (r *TaskReporter) Failed(title string, depth int, leaf bool, err error) {
	if !leaf {
		return
	}
	r.stop()
	_, _ = fmt.Fprintf(r.out, "%s%s %s\n", strings.Repeat("  ", depth), Error.Sprint("❌"), Error.Sprint(title))
}

func (r *TaskReporter) stop() {
	if r.running {
		r.spinner.Stop()
		r.running = false
	}
}
