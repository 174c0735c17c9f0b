package commands

import (
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/service"
)

// lookupTask parses args as a task reference and resolves it against the
// current collection. On failure it writes the error line and returns false.
func lookupTask(svc service.Service, args []string, errOut io.Writer) (service.Task, bool) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, false
	}

	task, err := ResolveTaskRef(svc.Tasks(), ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, false
	}
	return task, true
}

// storeFailure reports a failed store write and returns the exit code.
func storeFailure(err error, errOut io.Writer) int {
	fmt.Fprintf(errOut, "error: store error: %v\n", err)
	return exitcode.StoreError
}
