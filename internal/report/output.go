// Package report writes the machine-readable output and the markdown step
// summary after a successful update.
package report

import (
	"fmt"
	"io"
	"os"
)

// Stdout is the target name that means standard output.
const Stdout = "-"

// WriteOutput records "commit=<sha>" at target. An empty target disables
// the output; a file target is overwritten.
func WriteOutput(target string, stdout io.Writer, commit string) error {
	line := fmt.Sprintf("commit=%s\n", commit)
	switch target {
	case "":
		return nil
	case Stdout:
		_, err := io.WriteString(stdout, line)
		return err
	}
	if err := os.WriteFile(target, []byte(line), 0644); err != nil {
		return fmt.Errorf("writing output %s: %w", target, err)
	}
	return nil
}
