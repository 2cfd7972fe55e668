package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"userlist/internal/client"
	"userlist/internal/view/shell"
	"userlist/internal/view/userlist"
)

type renderOptions struct {
	url     string
	timeout time.Duration
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	ropts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch the user directory once and print the page HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			url := ropts.url
			if url == "" {
				url = cfg.PublicURL
			}
			return runRender(cmd.Context(), cmd.OutOrStdout(), client.NewUsersClient(url, nil), cfg.AppTitle, ropts.timeout, logger)
		},
	}
	cmd.Flags().StringVar(&ropts.url, "url", "", "base URL serving /api/users (defaults to PUBLIC_URL)")
	cmd.Flags().DurationVar(&ropts.timeout, "timeout", 0, "stop waiting for the fetch after this long (0 waits indefinitely)")
	return cmd
}

func runRender(ctx context.Context, w io.Writer, fetcher userlist.Fetcher, title string, timeout time.Duration, logger *zap.Logger) error {
	view := userlist.New(fetcher, logger)
	view.Mount()
	defer view.Unmount()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := view.Wait(ctx); err != nil {
		logger.Warn("rendering before users settled", zap.Error(err))
	}
	return shell.New(title, view).Render(w)
}
