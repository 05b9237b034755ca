// ghadapter runs a command that prints a JSON object, such as bin/diff, and
// exposes its top-level fields as GitHub Actions step outputs. The exit code
// of the command is kept so -fail-on-diff still fails the step.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: ghadapter command [args...]")
		os.Exit(2)
	}

	cmd := exec.Command(os.Args[1], os.Args[2:]...)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr

	code := 0
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		code = exitErr.ExitCode()
	}
	_, _ = os.Stdout.Write(output)

	if githubOutput := os.Getenv("GITHUB_OUTPUT"); githubOutput != "" && len(output) > 0 {
		f, err := os.OpenFile(githubOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := writeOutputs(f, output); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		_ = f.Close()
	}

	os.Exit(code)
}

// writeOutputs writes key=value lines in key order. Arrays are joined with
// ";" so rectangles such as "1,2,3,4" stay readable.
func writeOutputs(w io.Writer, output []byte) error {
	var result map[string]any
	if err := json.Unmarshal(output, &result); err != nil {
		return fmt.Errorf("failed to parse command output: %w", err)
	}

	keys := make([]string, 0, len(result))
	for key := range result {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", key, format(result[key])); err != nil {
			return err
		}
	}
	return nil
}

func format(v any) string {
	switch v := v.(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			parts = append(parts, format(e))
		}
		return strings.Join(parts, ";")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
