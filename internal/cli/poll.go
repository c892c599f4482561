package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/langpack/pkg/errors"
	"github.com/matzehuels/langpack/pkg/langpack"
)

// pollCommand creates the poll command.
func (c *CLI) pollCommand() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Refresh every repository on a schedule",
		Long: `Resolve every configured repository immediately and then on each tick of
a cron schedule until interrupted.

The schedule accepts standard five-field cron expressions and descriptors
such as "@hourly" or "@every 30m". It defaults to [poll].schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if schedule == "" {
				schedule = cfg.Poll.Schedule
			}
			repos := cfg.RepositoryConfigs()
			if len(repos) == 0 {
				return errs.New(errs.ErrCodeConfig, "no repositories configured")
			}

			c.instrument()
			r, store, err := c.newResolver(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer store.Close()

			return c.poll(ctx, r, repos, schedule)
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default from config)")
	return cmd
}

// poll runs one pass at once and then one per schedule tick until ctx is
// done. Ticks that arrive while a pass is still running are skipped.
func (c *CLI) poll(ctx context.Context, r *langpack.Resolver, repos []*langpack.RepositoryConfig, schedule string) error {
	base := r.Logger
	pass := func() {
		logger, _ := withRunID(base)
		r.Logger = logger
		prog := newProgress(logger)
		outcomes := r.ResolveAll(ctx, repos)
		prog.done(fmt.Sprintf("Polled %d repositories: %s", len(outcomes), summarize(outcomes)))
	}

	sched := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := sched.AddFunc(schedule, pass); err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "invalid poll schedule %q", schedule)
	}

	pass()
	sched.Start()
	c.Logger.Info("polling", "schedule", schedule, "repositories", len(repos))

	<-ctx.Done()
	<-sched.Stop().Done()
	c.Logger.Info("poller stopped")
	return nil
}

// summarize counts outcomes by status, e.g. "cached=3 fetched=1".
func summarize(outcomes []langpack.Outcome) string {
	counts := make(map[string]int)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
