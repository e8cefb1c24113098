package demo

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"

	"go.viam.com/pourdemo/solution"
)

// ErrNotConfirmed is returned when the operator declines to execute a solution.
var ErrNotConfirmed = errors.New("solution execution was not confirmed")

// A Confirmer gates execution of a received solution.
type Confirmer interface {
	Confirm(ctx context.Context, sol *solution.Solution) (bool, error)
}

// ConfirmFunc adapts a function to a Confirmer.
type ConfirmFunc func(ctx context.Context, sol *solution.Solution) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, sol *solution.Solution) (bool, error) {
	return f(ctx, sol)
}

// AutoConfirm confirms every solution.
var AutoConfirm = ConfirmFunc(func(context.Context, *solution.Solution) (bool, error) { return true, nil })

// ConsoleConfirmer asks on the terminal before executing.
type ConsoleConfirmer struct {
	// Accessible uses plain line prompts instead of the interactive form.
	Accessible bool
}

// Confirm shows the solution summary and waits for a yes or no. Aborting the prompt declines.
func (c ConsoleConfirmer) Confirm(ctx context.Context, sol *solution.Solution) (bool, error) {
	var execute bool
	confirm := huh.NewConfirm().
		Title(fmt.Sprintf("Execute solution %q?", sol.TaskID)).
		Description(fmt.Sprintf("%d subtrajectories, total cost %.3f", len(sol.SubTrajectories), sol.Cost())).
		Affirmative("Execute").
		Negative("Abort").
		Value(&execute)
	err := huh.NewForm(huh.NewGroup(confirm)).WithAccessible(c.Accessible).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "waiting for confirmation")
	}
	return execute, nil
}
