package backport

import (
	"github.com/thomas-vilte/matebackport/internal/message"
	"github.com/thomas-vilte/matebackport/internal/models"
	"github.com/thomas-vilte/matebackport/internal/tasks"
)

// Node is one entry of a plan: either a Step or a titled group of nodes.
type Node struct {
	Title    string
	Step     Step
	Children []Node
}

func leaf(s Step) Node {
	return Node{Title: s.Title(), Step: s}
}

// Plan returns the ordered work for opts. It does not touch any repository;
// the strategy is chosen here and never revisited while running.
func Plan(opts models.BackportOptions) []Node {
	plan := []Node{
		leaf(ReadVersion{}),
		leaf(GeneratePatches{}),
	}

	switch opts.Strategy() {
	case models.StrategySquash:
		plan = append(plan, leaf(ApplyAllPatches{}))
		if opts.Bump {
			plan = append(plan, leaf(BumpVersion{Kind: opts.BumpKind()}))
		}
		plan = append(plan, leaf(CommitSquashed{}))

	case models.StrategyPreserveAuthor:
		plan = append(plan, Node{
			Title:    "Cherry-pick commit from V8 clone to " + VendorDir,
			Children: perPatch(opts, models.ApplyMailbox, func(i int) Step { return Amend{Index: i} }),
		})

	default:
		plan = append(plan, Node{
			Title:    "Apply and commit patches to " + VendorDir,
			Children: perPatch(opts, models.ApplyWorkingTree, func(i int) Step { return Commit{Index: i} }),
		})
	}

	return plan
}

func perPatch(opts models.BackportOptions, method models.ApplyMethod, finish func(int) Step) []Node {
	nodes := make([]Node, 0, len(opts.SHAs))
	for i, ref := range opts.SHAs {
		children := []Node{leaf(ApplyPatch{Index: i, Method: method})}
		if opts.Bump {
			children = append(children, leaf(BumpVersion{Kind: opts.BumpKind()}))
		}
		children = append(children, leaf(finish(i)))

		nodes = append(nodes, Node{
			Title:    "Commit " + message.ShortSHA(ref),
			Children: children,
		})
	}
	return nodes
}

// Tasks converts a plan into runnable tasks.
func Tasks(plan []Node) []tasks.Task[*RunContext] {
	out := make([]tasks.Task[*RunContext], 0, len(plan))
	for _, n := range plan {
		t := tasks.Task[*RunContext]{Title: n.Title}
		if n.Step != nil {
			t.Run = n.Step.Run
		}
		if len(n.Children) > 0 {
			t.Subtasks = Tasks(n.Children)
		}
		out = append(out, t)
	}
	return out
}
