package main

import (
	"os"
	"strings"

	"taskdeck/internal/cli"
)

func isTaskID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "task-") && len(s) > len("task-")
}

// rewriteDirectTaskLookupArgs lets `taskdeck <task-id>` work like
// `taskdeck tasks show <task-id>`. Cobra treats the first positional token as
// a subcommand, so the rewrite happens before parsing. Persistent flags may
// come first, so the first positional token is located rather than argv[1].
func rewriteDirectTaskLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value so a task id
	// following them is never swallowed.
	valueFlags := map[string]bool{
		"--config":    true,
		"--dir":       true,
		"--backend":   true,
		"--remote":    true,
		"--format":    true,
		"--log-level": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "tasks", "show")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isTaskID(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		case isTaskID(a):
			return rewrite(i)
		default:
			return argv
		}
	}
	return argv
}

func main() {
	os.Args = rewriteDirectTaskLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
