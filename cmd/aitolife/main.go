package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aitolife/internal/app"
	"aitolife/internal/directory"
	"aitolife/internal/i18n"
)

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "aitolife",
		Short:         "Bilingual AI tools directory, guides and blog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(opts),
		newToolsCmd(opts),
		newCacheCmd(opts),
	)

	return root
}

// withApp loads configuration, builds the logger and the application, and
// runs fn with them.
func withApp(ctx context.Context, opts *rootOptions, fn func(context.Context, app.Config, *app.App) error) error {
	cfg, err := app.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("init app", zap.Error(err))
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close cache store", zap.Error(err))
		}
	}()

	return fn(ctx, cfg, application)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web site",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			return withApp(ctx, opts, func(ctx context.Context, _ app.Config, a *app.App) error {
				return a.Serve(ctx)
			})
		},
	}
}

type toolsOptions struct {
	search   string
	category string
	pricing  string
	sort     string
	lang     string
	json     bool
}

func newToolsCmd(root *rootOptions) *cobra.Command {
	opts := toolsOptions{}

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List directory tools with the site's filters applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), root, func(ctx context.Context, cfg app.Config, a *app.App) error {
				lang := cfg.DefaultLanguage
				if opts.lang != "" {
					parsed, ok := i18n.Parse(opts.lang)
					if !ok {
						return fmt.Errorf("unsupported language %q", opts.lang)
					}
					lang = parsed
				}

				filter := directory.ParseFilter(map[string][]string{
					"q":        {opts.search},
					"category": {opts.category},
					"pricing":  {opts.pricing},
					"sort":     {opts.sort},
				})
				tools := a.Tools(ctx, lang, filter)
				if opts.json {
					return writeJSON(cmd.OutOrStdout(), tools)
				}
				return writeTable(cmd.OutOrStdout(), tools)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.search, "search", "", "case-insensitive search over title and description")
	flags.StringVar(&opts.category, "category", directory.CategoryAll, "category label")
	flags.StringVar(&opts.pricing, "pricing", string(directory.PricingAll), "free, freemium, paid or subscription")
	flags.StringVar(&opts.sort, "sort", string(directory.SortRating), "rating, newest or name")
	flags.StringVar(&opts.lang, "lang", "", "content language (zh or en)")
	flags.BoolVar(&opts.json, "json", false, "print JSON instead of a table")

	return cmd
}

func writeJSON(w io.Writer, tools []directory.Tool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tools)
}

func writeTable(w io.Writer, tools []directory.Tool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tTITLE\tRATING\tPRICING")
	for _, t := range tools {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%s\n", t.Slug, t.Title, t.Rating, t.Pricing)
	}
	return tw.Flush()
}

func newCacheCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the content cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry in the configured namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), root, func(ctx context.Context, _ app.Config, a *app.App) error {
				removed := a.ClearCache(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", removed)
				return nil
			})
		},
	})

	return cmd
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
