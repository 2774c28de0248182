package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI runs the command through "go run" and returns its combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping go run in short mode")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not available")
	}
	cmd := exec.Command("go", append([]string{"run", "main.go"}, args...)...)
	cmd.Dir = "."
	cmd.Env = append(os.Environ(), "BLOCKPY_ONE_BASED=", "BLOCKPY_OUTPUT=", "LOG_LEVEL=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// TestCLIHelp tests the help display functionality
func TestCLIHelp(t *testing.T) {
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("help should exit normally: %v\n%s", err, output)
	}
	if !strings.Contains(output, "blockpy - Blockly workspace to MicroPython generator") {
		t.Error("Help output should contain title")
	}
	if !strings.Contains(output, "Usage:") {
		t.Error("Help output should contain Usage section")
	}
}

// TestCLIErrors tests that failures exit non-zero with an Error: line
func TestCLIErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(dir string) string
		errorMsg string
	}{
		{
			name:     "no arguments",
			setup:    func(string) string { return "" },
			errorMsg: "no workspace path given",
		},
		{
			name: "nonexistent path",
			setup: func(dir string) string {
				return filepath.Join(dir, "missing.xml")
			},
			errorMsg: "failed to load workspaces",
		},
		{
			name:     "empty directory",
			setup:    func(dir string) string { return dir },
			errorMsg: "no workspace files found",
		},
		{
			name: "unknown block",
			setup: func(dir string) string {
				path := filepath.Join(dir, "bad.xml")
				os.WriteFile(path, []byte(`<xml><block type="robot_dance"></block></xml>`), 0644)
				return path
			},
			errorMsg: "unknown block kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var args []string
			if path := tt.setup(t.TempDir()); path != "" {
				args = append(args, path)
			}
			output, err := runCLI(t, args...)
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(output, "Error: ") {
				t.Errorf("Expected Error: prefix, got: %s", output)
			}
			if !strings.Contains(output, tt.errorMsg) {
				t.Errorf("Expected error message to contain '%s', got: %s", tt.errorMsg, output)
			}
		})
	}
}

// TestCLIGenerate tests a full conversion to a file
func TestCLIGenerate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "count.xml")
	out := filepath.Join(dir, "count.py")
	workspace := `<xml>
  <block type="controls_repeat_ext">
    <value name="TIMES"><block type="math_number"><field name="NUM">3</field></block></value>
    <statement name="DO">
      <block type="text_print">
        <value name="TEXT"><block type="text"><field name="TEXT">tick</field></block></value>
      </block>
    </statement>
  </block>
</xml>`
	if err := os.WriteFile(in, []byte(workspace), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	output, err := runCLI(t, "-l", "error", "-o", out, in)
	if err != nil {
		t.Fatalf("Unexpected error: %v\n%s", err, output)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	want := "for count in range(3):\n    print('tick')\n"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
