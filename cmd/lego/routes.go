package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/legodom/lego/pkg/router"
)

func routesCmd(opts *options) *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the configured routes",
		Long: `List the configured routes in match order.

With --match, report which route a URL selects and the parameters it
extracts.

Examples:
  lego routes
  lego routes --match=/users/42?tab=posts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(opts.dir)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if match != "" {
				return matchRoute(w, p, match)
			}
			if len(p.cfg.Routes) == 0 {
				info(w, "no routes configured")
				return nil
			}

			width := len("PATH")
			for _, r := range p.cfg.Routes {
				width = max(width, len(r.Path))
			}
			col := lipgloss.NewStyle().Width(width + 2)
			fmt.Fprintln(w, headerStyle.Render(col.Render("PATH")+"COMPONENT"))
			for _, r := range p.cfg.Routes {
				line := col.Render(r.Path) + "<" + r.Component + ">"
				if len(r.Require) > 0 {
					line += dimStyle.Render("  requires " + strings.Join(r.Require, ", "))
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&match, "match", "m", "", "Show the route a URL matches")

	return cmd
}

func matchRoute(w io.Writer, p *project, url string) error {
	r := router.New(router.Config{})
	for _, rc := range p.cfg.Routes {
		if err := r.Add(rc.Path, rc.Component, nil); err != nil {
			return err
		}
	}
	m, ok := r.Match(url)
	if !ok {
		return fmt.Errorf("%w: %s", router.ErrNoRoute, url)
	}
	success(w, "%s -> %s <%s>", url, m.Route.Pattern, m.Route.Tag)
	keys := make([]string, 0, len(m.Params))
	for k := range m.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		info(w, "param %s = %s", k, m.Params[k])
	}
	query := m.Query()
	keys = keys[:0]
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		info(w, "query %s = %s", k, query[k])
	}
	return nil
}
