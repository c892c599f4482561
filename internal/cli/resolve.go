package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/langpack/pkg/config"
	errs "github.com/matzehuels/langpack/pkg/errors"
	"github.com/matzehuels/langpack/pkg/langpack"
	"github.com/matzehuels/langpack/pkg/observability"
)

// resolveOptions holds the flags shared by resolve and check.
type resolveOptions struct {
	json    bool
	refresh bool
	noCache bool
}

func (o *resolveOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "drop cached entries before resolving")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "bypass the cache entirely")
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "resolve [slug...]",
		Short: "Fetch the language packs of configured repositories",
		Long: `Fetch language-pack.json from each configured repository and cache the result.

Without arguments every repository in the config is resolved. Repositories
whose provider recently failed stay in cooldown until the wait expires.`,
		Example: `  langpack resolve
  langpack resolve hello-dolly --refresh
  langpack resolve --json > packs.json`,
		ValidArgsFunction: c.completeSlugs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, outcomes, err := c.runResolve(cmd.Context(), args, opts)
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(os.Stdout, newOutcomeReports(outcomes))
			}
			printOutcomes(outcomes)
			return failedOutcomes(outcomes)
		},
	}
	opts.register(cmd)
	return cmd
}

// runResolve loads config, selects repositories and resolves them.
func (c *CLI) runResolve(ctx context.Context, slugs []string, opts resolveOptions) (*config.Config, []langpack.Outcome, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	repos, err := selectRepositories(cfg, slugs)
	if err != nil {
		return nil, nil, err
	}
	if len(repos) == 0 {
		if !opts.json {
			printInfo("No repositories configured")
			printDetail("Add [[repository]] tables to %s", displayPath(cfg.Path))
		}
		return cfg, nil, nil
	}

	r, store, err := c.newResolver(ctx, cfg, opts.noCache)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()
	logger, _ := withRunID(c.Logger)
	r.Logger = logger

	if opts.refresh {
		for _, rc := range repos {
			if err := r.Forget(ctx, rc.Slug); err != nil {
				logger.Warn("failed to drop cached entry", "slug", rc.Slug, "err", err)
			}
		}
	}

	prog := newProgress(logger)
	var spinner *Spinner
	if !opts.json {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %d repositories...", len(repos)))
		spinner.Start()
	}
	outcomes := r.ResolveAll(ctx, repos)
	if err := ctx.Err(); err != nil {
		if spinner != nil {
			spinner.Stop()
		}
		return nil, nil, err
	}
	if spinner != nil {
		spinner.StopWithSuccess(fmt.Sprintf("Resolved %d repositories", len(repos)))
	}
	prog.done(fmt.Sprintf("Resolved %d repositories", len(repos)))
	return cfg, outcomes, nil
}

// =============================================================================
// Reports
// =============================================================================

// outcomeReport is the JSON form of one resolution.
type outcomeReport struct {
	Slug     string                            `json:"slug"`
	Provider string                            `json:"provider"`
	Type     string                            `json:"type"`
	Status   string                            `json:"status"`
	Packs    map[string]langpack.LocalePackage `json:"packs,omitempty"`
	Code     string                            `json:"code,omitempty"`
	Error    string                            `json:"error,omitempty"`
}

func newOutcomeReports(outcomes []langpack.Outcome) []outcomeReport {
	out := make([]outcomeReport, 0, len(outcomes))
	for _, o := range outcomes {
		rep := outcomeReport{
			Slug:     o.Config.Slug,
			Provider: string(o.Config.Provider),
			Type:     string(o.Config.Type),
			Status:   o.Status,
		}
		if o.Result != nil {
			rep.Packs = o.Result.Packs
		}
		if o.Err != nil {
			rep.Code = string(errs.GetCode(o.Err))
			rep.Error = errs.Detail(o.Err)
		}
		out = append(out, rep)
	}
	return out
}

func printOutcomes(outcomes []langpack.Outcome) {
	if len(outcomes) == 0 {
		return
	}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		detail := errorDetail(o.Err)
		if o.Result != nil {
			detail = strings.Join(sortedLocales(o.Result.Packs), " ")
		}
		rows = append(rows, []string{
			StyleValue.Render(o.Config.Slug),
			o.Config.Provider.Title(),
			statusLabel(o.Status),
			detail,
		})
	}
	fmt.Println(renderTable([]string{"Slug", "Provider", "Status", "Locales"}, rows))
}

// failedOutcomes reports an error when a repository failed for a reason
// other than cooldown or a missing manifest.
func failedOutcomes(outcomes []langpack.Outcome) error {
	failed := 0
	for _, o := range outcomes {
		if o.Status == observability.OutcomeError {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return errs.New(errs.ErrCodeProvider, "%d of %d repositories failed", failed, len(outcomes))
}

func sortedLocales(packs map[string]langpack.LocalePackage) []string {
	out := make([]string, 0, len(packs))
	for locale := range packs {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

func displayPath(path string) string {
	if path == "" {
		return "the config file"
	}
	return path
}
