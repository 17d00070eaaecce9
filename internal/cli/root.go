package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-dashboard/internal/models"
	"github.com/noah-isme/sma-dashboard/pkg/config"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
	"github.com/noah-isme/sma-dashboard/pkg/logger"
)

type rootOptions struct {
	streams Streams
	verbose bool
	baseURL string

	app   *App
	owned bool
}

// Execute runs dashctl with the process arguments and exits non-zero on
// failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	opts := &rootOptions{streams: StdStreams()}
	err := newRootCommand(opts).ExecuteContext(ctx)
	opts.close()
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: "+errorText(err))
		os.Exit(1)
	}
}

// NewRootCommand builds the dashctl command tree.
func NewRootCommand(streams Streams) *cobra.Command {
	return newRootCommand(&rootOptions{streams: streams})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dashctl",
		Short:         "dashctl manages school records from the terminal",
		Long:          `dashctl lists, searches, edits, imports and exports the records of the school dashboard API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd.Context())
		},
	}
	fs := cmd.PersistentFlags()
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	fs.StringVar(&opts.baseURL, "api", "", "API base URL, overrides API_BASE_URL")

	cmd.AddCommand(
		loginCmd(opts),
		logoutCmd(opts),
		resourcesCmd(opts),
		listCmd(opts),
		createCmd(opts),
		updateCmd(opts),
		deleteCmd(opts),
		browseCmd(opts),
		importCmd(opts),
		exportCmd(opts),
	)
	return cmd
}

func (o *rootOptions) init(ctx context.Context) error {
	if o.app != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.baseURL != "" {
		cfg.Client.BaseURL = strings.TrimRight(o.baseURL, "/")
	}
	log, err := logger.NewCLI(cfg, o.verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	app, err := NewApp(ctx, cfg, o.streams, log)
	if err != nil {
		return err
	}
	o.app, o.owned = app, true
	return nil
}

func (o *rootOptions) close() {
	if o.app != nil && o.owned {
		_ = o.app.Close()
	}
}

func resourcesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "resources",
		Short:        "list the resources dashctl can manage",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.app.Streams.Out
			for _, res := range models.Resources() {
				fmt.Fprintf(out, "%-10s %s\n", res.Name, res.Title)
			}
			return nil
		},
	}
}

// errorText prefers the user facing message of classified failures.
func errorText(err error) string {
	var mutErr *appErrors.MutationError
	if errors.As(err, &mutErr) {
		return mutErr.Message
	}
	return err.Error()
}
