package commands

import (
	"context"
	"fmt"

	"taskpro/internal/app"
	"taskpro/internal/service"
)

// errOutOfRange marks a list number past the end of the list.
type errOutOfRange int

func (e errOutOfRange) Error() string { return fmt.Sprintf("task number out of range: %d", int(e)) }

// lookupTask fetches the owner's list and finds the task ref points at.
// Numbers count from the newest task, as printed by list.
func lookupTask(ctx context.Context, a *app.App, ref TaskRef) (service.Task, error) {
	if err := a.List.Refresh(ctx); err != nil {
		return service.Task{}, err
	}
	return findTask(a.List.Tasks(), ref)
}

func findTask(list []service.Task, ref TaskRef) (service.Task, error) {
	if ref.ID == "" {
		if ref.Num < 1 || ref.Num > len(list) {
			return service.Task{}, errOutOfRange(ref.Num)
		}
		return list[ref.Num-1], nil
	}
	for _, t := range list {
		if t.ID == ref.ID {
			return t, nil
		}
	}
	return service.Task{}, service.ErrTaskNotFound
}
