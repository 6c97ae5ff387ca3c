package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/legodom/lego/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ┌─┐┌─┐┌─┐
  ║  ├┤ │ ┬│ │
  ╩═╝└─┘└─┘└─┘
`

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
)

// options are the flags shared by every command.
type options struct {
	dir     string
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "lego",
		Short: "Render and serve web component pages",
		Long: `Lego renders pages built from .lego single-file components.

Components are defined by a <template>, an optional data <script> and
an optional <style>. Pages are rendered on the server, either once
(lego render) or as live views kept in sync over WebSocket (lego serve).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", ".", "Project directory")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(
		renderCmd(opts),
		serveCmd(opts),
		checkCmd(opts),
		routesCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// logger returns the command logger. It writes to w, at debug level with
// --verbose.
func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", warnStyle.Render("⚠"), fmt.Sprintf(format, args...))
}

func errorMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render("✗"), fmt.Sprintf(format, args...))
}
