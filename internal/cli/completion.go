package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

// completionShell describes how one shell loads pulse completions.
type completionShell struct {
	// loadHint is the one-liner that loads completions into the current session.
	loadHint string
	// target returns the install path under home; nil means --install is unsupported.
	target func(home string) string
	// notes are printed after a successful install.
	notes func(target string) []string
	gen   func(w io.Writer) error
}

var completionShells = map[string]completionShell{
	"bash": {
		loadHint: `eval "$(pulse completion bash)"`,
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions", "pulse")
		},
		notes: func(target string) []string {
			return []string{"Restart your shell or run: source " + target}
		},
		gen: func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
	},
	"zsh": {
		loadHint: `eval "$(pulse completion zsh)"`,
		target: func(home string) string {
			return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_pulse")
		},
		notes: func(target string) []string {
			return []string{
				"",
				"Ensure this directory is in your fpath. Add to ~/.zshrc if needed:",
				fmt.Sprintf("  fpath=(%s $fpath)", filepath.Dir(target)),
				"  autoload -Uz compinit && compinit",
			}
		},
		gen: func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
	},
	"fish": {
		loadHint: "pulse completion fish | source",
		target: func(home string) string {
			return filepath.Join(home, ".config", "fish", "completions", "pulse.fish")
		},
		notes: func(string) []string {
			return []string{"Completions will be available in new fish sessions automatically."}
		},
		gen: func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
	},
	"powershell": {
		loadHint: "pulse completion powershell | Out-String | Invoke-Expression",
		gen:      func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for pulse",
	Long: `Set up shell tab-completions for pulse commands, flags, task IDs and
subtask IDs.

Supported shells: bash, zsh, fish, powershell

Quick install (writes the script under your home directory):

  pulse completion bash --install
  pulse completion zsh --install
  pulse completion fish --install

Or print the completion script to stdout (for manual setup):

  pulse completion bash
  pulse completion powershell`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletionCmd,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions into your shell's completion directory")

	// Replace Cobra's default completion command.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletionCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	name := args[0]
	shell, ok := completionShells[name]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", name)
	}

	if completionInstall {
		return installCompletion(cmd.OutOrStdout(), name, shell)
	}

	// Hints go to stderr so eval "$(pulse completion bash)" sees only the script.
	hints := cmd.ErrOrStderr()
	fmt.Fprintln(hints, "# To load completions in your current session:")
	fmt.Fprintf(hints, "#   %s\n", shell.loadHint)
	if shell.target != nil {
		fmt.Fprintf(hints, "# To install permanently:\n#   pulse completion %s --install\n", name)
	}
	return shell.gen(cmd.OutOrStdout())
}

func installCompletion(out io.Writer, name string, shell completionShell) error {
	if shell.target == nil {
		return fmt.Errorf("automatic install is not supported for %s; run 'pulse completion %s' and add the output to your profile", name, name)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	target := shell.target(home)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}
	if err := writeCompletionFile(target, shell.gen); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s completions installed to %s\n", name, target)
	for _, line := range shell.notes(target) {
		fmt.Fprintln(out, line)
	}
	return nil
}

// writeCompletionFile writes the generated script to target, reporting a
// close error when generation itself succeeded.
func writeCompletionFile(target string, gen func(io.Writer) error) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}

	writeErr := gen(f)
	closeErr := f.Close()

	if writeErr != nil {
		return fmt.Errorf("generating completion script: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
