package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/langpack/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached language packs and cooldowns",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached result and cooldown",
		Long: `Drop every cached result and cooldown under the configured key prefix.

The next resolve contacts each provider again. Entries written by other
scopes sharing the same backend are left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			r, store, err := c.newResolver(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := r.ForceCheck(ctx)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Backend: %s", describeBackend(cfg.CacheOptions()))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached entries are stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(describeBackend(cfg.CacheOptions()))
			return nil
		},
	}
}

// describeBackend names a cache location without exposing credentials.
func describeBackend(opts cache.Options) string {
	switch opts.Backend {
	case "", cache.BackendFile:
		return opts.Dir
	case cache.BackendRedis:
		return "redis"
	case cache.BackendMongo:
		coll := opts.MongoCollection
		if coll == "" {
			coll = cache.DefaultMongoCollection
		}
		return fmt.Sprintf("mongo %s.%s", opts.MongoDatabase, coll)
	default:
		return opts.Backend
	}
}
