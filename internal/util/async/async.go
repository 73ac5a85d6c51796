package async

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes all tasks concurrently and waits for every one of them.
// A failing task does not cancel the others. The returned error joins the
// failures of all tasks, each prefixed with the task name.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "jobmanager", Func: deleteJobManager},
//	    {Name: "taskmanager", Func: deleteTaskManager},
//	}
//	if err := RunParallel(ctx, tasks); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	// The group is not derived from ctx, so a failure never cancels the other tasks
	for _, task := range tasks {
		g.Go(func() error {
			if err := task.Func(ctx); err != nil {
				err = fmt.Errorf("%s: %w", task.Name, err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}

	return errors.Join(errs...)
}
