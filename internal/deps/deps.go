package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external program vadscribe shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement after PATH resolution. Path is set only when the
// program was found; Detail explains why it was not.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// Resolve looks req's command up on PATH.
func Resolve(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	st := Status{Requirement: req}
	if req.Command == "" {
		st.Detail = "command not configured"
		return st
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		st.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return st
	}
	st.Available, st.Path = true, path
	return st
}

// CheckBinaries resolves every requirement, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	out := make([]Status, len(requirements))
	for i, req := range requirements {
		out[i] = Resolve(req)
	}
	return out
}

// MissingRequired returns the names of required programs that were not found.
func MissingRequired(statuses []Status) []string {
	var names []string
	for _, st := range statuses {
		if !st.Available && !st.Optional {
			names = append(names, st.Name)
		}
	}
	return names
}
