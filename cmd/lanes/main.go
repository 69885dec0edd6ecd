package main

import (
	"os"
	"strings"

	"github.com/google/uuid"

	"lanes-cli/internal/cli"
)

func isBoardID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}

// rewriteDirectBoardArgs makes `lanes <board-id>` work like `lanes board <board-id>`.
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
// before parsing. Persistent flags may come first (`lanes --server URL <id>`).
func rewriteDirectBoardArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--db":        true,
		"--server":    true,
		"--actor":     true,
		"--format":    true,
		"--log-level": true,
	}

	insertAt := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "board")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isBoardID(argv[i+1]) {
				return insertAt(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isBoardID(a) {
			return insertAt(i)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectBoardArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
