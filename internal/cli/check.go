package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/langpack/pkg/langpack"
	"github.com/matzehuels/langpack/pkg/observability"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "check [slug...]",
		Short: "List translation updates the site should install",
		Long: `Resolve the configured repositories and compare their packs with the
translations recorded under [installed] in the config.

A pack is offered when it is newer than the installed translation for one
of the site's locales, or when nothing is installed for that locale.`,
		ValidArgsFunction: c.completeSlugs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, outcomes, err := c.runResolve(cmd.Context(), args, opts)
			if err != nil {
				return err
			}

			repos := make([]*langpack.RepositoryConfig, 0, len(outcomes))
			for _, o := range outcomes {
				if o.Status != observability.OutcomeFetched && o.Status != observability.OutcomeCached {
					if !opts.json {
						printWarning("%s skipped: %s", o.Config.Slug, errorDetail(o.Err))
					}
					continue
				}
				repos = append(repos, o.Config)
			}
			updates := langpack.SelectUpdates(repos, cfg.InstalledTranslations(), cfg.Site.Locales)

			if opts.json {
				return writeJSON(os.Stdout, updates)
			}
			printUpdates(updates)
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

func printUpdates(updates []langpack.Translation) {
	if len(updates) == 0 {
		printSuccess("All translations are up to date")
		return
	}
	rows := make([][]string, 0, len(updates))
	for _, t := range updates {
		rows = append(rows, []string{
			StyleValue.Render(t.Slug),
			string(t.Type),
			t.Language,
			t.Updated,
			StyleLink.Render(t.Package),
		})
	}
	fmt.Println(renderTable([]string{"Slug", "Type", "Language", "Updated", "Package"}, rows))
	printInfo("%d updates available", len(updates))
}
