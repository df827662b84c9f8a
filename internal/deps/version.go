package deps

import (
	"context"
	"fmt"
	"strings"
)

// Version runs command with args and returns the first non-empty output line.
// ffmpeg prints its banner on "-version"; mfa and uvx print a bare version.
func Version(ctx context.Context, run CommandRunner, command string, args ...string) (string, error) {
	if run == nil {
		run = RunCommand
	}
	out, err := run(ctx, command, args...)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("%s: empty version output", command)
}

// VersionArgs returns the version flag a known tool expects.
func VersionArgs(command string) []string {
	switch command {
	case "ffmpeg":
		return []string{"-version"}
	case "mfa":
		return []string{"version"}
	default:
		return []string{"--version"}
	}
}
