package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCompletion(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { completionInstall = false })

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"completion"}, args...))
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestCompletionCommand_DisablesDefault(t *testing.T) {
	if !rootCmd.CompletionOptions.DisableDefaultCmd {
		t.Error("expected Cobra default completion command to be disabled")
	}
}

func TestCompletionCommand_NoArgsShowsHelp(t *testing.T) {
	output, err := runCompletion(t)
	if err != nil {
		t.Fatalf("completion with no args should show help, not error: %v", err)
	}
	if !strings.Contains(output, "Quick install") {
		t.Error("no-args output should show help with install instructions")
	}
}

func TestCompletionCommand_Scripts(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "__start_pulse"},
		{"zsh", "compdef"},
		{"fish", "complete"},
		{"powershell", "Register-ArgumentCompleter"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			output, err := runCompletion(t, tt.shell)
			if err != nil {
				t.Fatalf("completion %s failed: %v", tt.shell, err)
			}
			if !strings.Contains(output, tt.want) {
				t.Errorf("%s completion output should contain %q", tt.shell, tt.want)
			}
		})
	}
}

func TestCompletionCommand_UnsupportedShell(t *testing.T) {
	if _, err := runCompletion(t, "nushell"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestCompletionCommand_InstallBash(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	output, err := runCompletion(t, "bash", "--install")
	if err != nil {
		t.Fatalf("completion bash --install failed: %v", err)
	}

	target := filepath.Join(tmpHome, ".local", "share", "bash-completion", "completions", "pulse")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("expected bash completion file at %s: %v", target, err)
	}
	if !strings.Contains(string(data), "__start_pulse") {
		t.Error("bash completion file should contain __start_pulse function")
	}
	if !strings.Contains(output, target) {
		t.Errorf("install output should name the target, got: %s", output)
	}
}

func TestCompletionCommand_InstallFish(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	if _, err := runCompletion(t, "fish", "--install"); err != nil {
		t.Fatalf("completion fish --install failed: %v", err)
	}

	target := filepath.Join(tmpHome, ".config", "fish", "completions", "pulse.fish")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected fish completion file at %s: %v", target, err)
	}
}

func TestCompletionCommand_InstallZsh(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	output, err := runCompletion(t, "zsh", "--install")
	if err != nil {
		t.Fatalf("completion zsh --install failed: %v", err)
	}
	dir := filepath.Join(tmpHome, ".local", "share", "zsh", "site-functions")
	if _, err := os.Stat(filepath.Join(dir, "_pulse")); err != nil {
		t.Fatalf("expected zsh completion file: %v", err)
	}
	if !strings.Contains(output, "fpath=("+dir) {
		t.Errorf("install output should explain fpath, got: %s", output)
	}
}

func TestCompletionShells_Table(t *testing.T) {
	for _, name := range completionCmd.ValidArgs {
		shell, ok := completionShells[name]
		if !ok {
			t.Errorf("no completion entry for %s", name)
			continue
		}
		if shell.gen == nil || shell.loadHint == "" {
			t.Errorf("%s entry is incomplete", name)
		}
		if (shell.target == nil) != (shell.notes == nil) {
			t.Errorf("%s: target and notes must be set together", name)
		}
	}
}

func TestCompletionCommand_InstallPowershellFails(t *testing.T) {
	_, err := runCompletion(t, "powershell", "--install")
	if err == nil {
		t.Fatal("expected error for powershell --install")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("error should mention 'not supported', got: %v", err)
	}
}
