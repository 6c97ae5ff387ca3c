package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legodom/lego/internal/errors"
	"github.com/legodom/lego/pkg/sfc"
)

func checkCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the project's components and routes",
		Long: `Parse every .lego file in the components directory and check that
each configured route names a component that can be resolved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}
}

func runCheck(cmd *cobra.Command, opts *options) error {
	w := cmd.OutOrStdout()
	p, err := loadProject(opts.dir)
	if err != nil {
		return err
	}

	defined := make(map[string]string)
	failed := 0
	for _, f := range p.files {
		src, err := p.components.ReadFile(f)
		if err == nil {
			_, err = sfc.Parse(src, f)
		}
		if err != nil {
			failed++
			errorMsg(w, "%s: %v", f, err)
			continue
		}
		name := sfc.NameFromFile(f)
		if prev, ok := defined[name]; ok {
			warn(w, "%s: %s is also defined by %s", f, name, prev)
		}
		defined[name] = f
		success(w, "%s %s", f, dimStyle.Render("<"+name+">"))
	}

	remote := p.remoteLoader() != nil
	for _, r := range p.cfg.Routes {
		if _, ok := defined[r.Component]; ok || remote {
			continue
		}
		failed++
		errorMsg(w, "route %s: no component <%s>", r.Path, r.Component)
	}

	if failed > 0 {
		return errors.New("L081").WithDetail(fmt.Sprintf("%d problem(s) in %s", failed, p.cfg.ComponentsPath()))
	}
	info(w, "%d component(s), %d route(s) ok", len(defined), len(p.cfg.Routes))
	return nil
}
