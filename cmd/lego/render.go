package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/legodom/lego"
	"github.com/legodom/lego/pkg/router"
	"github.com/legodom/lego/pkg/scheduler"
)

func renderCmd(opts *options) *cobra.Command {
	var (
		output string
		quiet  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "render [url]",
		Short: "Render the page to HTML",
		Long: `Render the project page once and print the resulting HTML.

Component shadow trees are serialized as declarative shadow roots. With a
url argument the router navigates to it first.

Examples:
  lego render
  lego render /users/42 -o users.html
  lego render -C ./site --wait=500ms`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			html, err := renderPage(cmd.Context(), opts, url, quiet)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
				return err
			}
			if err := os.WriteFile(output, []byte(html+"\n"), 0o644); err != nil {
				return err
			}
			success(cmd.ErrOrStderr(), "Rendered %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write HTML to a file instead of stdout")
	cmd.Flags().DurationVar(&quiet, "wait", 50*time.Millisecond, "Idle time that ends rendering, for remote components")

	return cmd
}

// renderPage renders the project page, routed to url when it is set.
func renderPage(ctx context.Context, opts *options, url string, quiet time.Duration) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := loadProject(opts.dir)
	if err != nil {
		return "", err
	}
	host := scheduler.NewManualHost()
	app, err := p.newApp(
		lego.WithHost(host),
		lego.WithLogger(opts.logger(os.Stderr)),
	)
	if err != nil {
		return "", err
	}

	var navErr error
	if url != "" {
		_ = app.Navigate(ctx, url, router.OnDone(func(err error) { navErr = err }))
	}
	settle(ctx, host, quiet)
	if navErr != nil {
		return "", navErr
	}
	return app.HTML()
}
