package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/langpack/pkg/config"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for langpack.

To load completions:

Bash:
  $ source <(langpack completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ langpack completion bash > /etc/bash_completion.d/langpack
  # macOS:
  $ langpack completion bash > $(brew --prefix)/etc/bash_completion.d/langpack

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ langpack completion zsh > "${fpath[1]}/_langpack"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ langpack completion fish | source

  # To load completions for each session, execute once:
  $ langpack completion fish > ~/.config/fish/completions/langpack.fish

PowerShell:
  PS> langpack completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> langpack completion powershell > langpack.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeSlugs completes repository slugs from the config file.
func (c *CLI) completeSlugs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	taken := make(map[string]bool, len(args))
	for _, a := range args {
		taken[a] = true
	}
	var out []string
	for _, r := range cfg.Repositories {
		if !taken[r.Slug] && strings.HasPrefix(r.Slug, toComplete) {
			out = append(out, r.Slug)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
