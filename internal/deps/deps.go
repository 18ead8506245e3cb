// Package deps checks the availability of the external binaries the run
// shells out to.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Requirement defines one external binary and whether the run can proceed
// without it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Version     string
	Detail      string
}

// Exiftool describes the metadata applicator binary. It is optional: without
// it files are still organized, just with their original embedded metadata.
func Exiftool(command string) Requirement {
	return Requirement{
		Name:        "ExifTool",
		Command:     command,
		Description: "writes sidecar metadata into copied files",
		Optional:    true,
	}
}

// Check evaluates the requirements and reports availability. For binaries
// found on PATH the version is probed with a short deadline so a wedged
// binary cannot stall startup.
func Check(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, checkOne(ctx, req))
	}
	return results
}

func checkOne(ctx context.Context, req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Command = resolved
	status.Available = true
	status.Version = probeVersion(ctx, resolved)
	return status
}

func probeVersion(ctx context.Context, binary string) string {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, binary, "-ver").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
