package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/legodom/lego"
	"github.com/legodom/lego/internal/config"
	"github.com/legodom/lego/internal/errors"
	"github.com/legodom/lego/pkg/component"
	"github.com/legodom/lego/pkg/loader"
	"github.com/legodom/lego/pkg/router"
	"github.com/legodom/lego/pkg/scheduler"
)

// project is a loaded project: its configuration and the files it names.
type project struct {
	cfg    *config.Config
	page   string
	styles component.StyleSets

	// components is nil when the components directory does not exist.
	components *loader.Dir
	files      []string
}

func loadProject(dir string) (*project, error) {
	cfg, err := config.LoadOrDefaults(dir)
	if err != nil {
		return nil, err
	}
	p := &project{cfg: cfg, styles: component.StyleSets{}}

	page, err := os.ReadFile(cfg.PagePath())
	if err != nil {
		return nil, errors.New("L080").WithDetail(cfg.PagePath()).Wrap(err)
	}
	p.page = string(page)

	for name, path := range cfg.StylePaths() {
		css, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Newf(errors.CategoryConfig, "style set %q", name).Wrap(err)
		}
		p.styles[name] = string(css)
	}

	if st, err := os.Stat(cfg.ComponentsPath()); err == nil && st.IsDir() {
		p.components = loader.NewDir(cfg.ComponentsPath())
		if p.files, err = p.components.Files(); err != nil {
			return nil, fmt.Errorf("reading components: %w", err)
		}
	}
	return p, nil
}

// remoteLoader returns the configured HTTP or S3 loader, or nil.
func (p *project) remoteLoader() component.LoaderFunc {
	lc := p.cfg.Loader
	switch {
	case lc.URL != "":
		h := loader.NewHTTP(lc.URL)
		h.MaxSize = lc.MaxSize
		return loader.Func(h)
	case lc.S3.Bucket != "":
		client := s3.New(s3.Options{
			Region:      s3Region(lc.S3.Region),
			Credentials: aws.NewCredentialsCache(envCredentials{}),
		})
		return loader.Func(loader.NewS3(client, lc.S3.Bucket, lc.S3.Prefix).WithMaxSize(lc.MaxSize))
	}
	return nil
}

// options returns the runtime options the configuration implies.
func (p *project) options() []lego.Option {
	opts := []lego.Option{
		lego.WithSyntax(p.cfg.Syntax),
		lego.WithStyleSets(p.styles),
		lego.WithLoadTimeout(p.cfg.Loader.Timeout),
		lego.WithHistory(),
	}
	if p.cfg.Outlet != "" {
		opts = append(opts, lego.WithOutlet(p.cfg.Outlet))
	}
	if l := p.remoteLoader(); l != nil {
		opts = append(opts, lego.WithLoader(l))
	}
	return opts
}

// newApp builds an App for the project: local components are defined,
// routes registered and the page mounted. opts apply after the project's
// own options.
func (p *project) newApp(opts ...lego.Option) (*lego.App, error) {
	app, err := lego.New(append(p.options(), opts...)...)
	if err != nil {
		return nil, err
	}
	for _, f := range p.files {
		src, err := p.components.ReadFile(f)
		if err != nil {
			return nil, err
		}
		if err := app.DefineSFC(src, f); err != nil {
			return nil, err
		}
	}
	for _, r := range p.cfg.Routes {
		if err := app.Route(r.Path, r.Component, requireAll(r.Require)); err != nil {
			return nil, err
		}
	}
	if err := app.LoadPage(p.page); err != nil {
		return nil, err
	}
	return app, nil
}

// requireAll guards a route on every key in keys.
func requireAll(keys []string) router.Middleware {
	if len(keys) == 0 {
		return nil
	}
	mw := make([]router.Middleware, len(keys))
	for i, k := range keys {
		mw[i] = router.RequireGlobal(k)
	}
	return router.Chain(mw...)
}

// settle drives host until it has been idle for quiet. Remote loads and
// route middleware finish on other goroutines, so a single Settle may
// return before their results are posted.
func settle(ctx context.Context, host *scheduler.ManualHost, quiet time.Duration) {
	idle := time.Now()
	for {
		if host.Settle(32) > 0 || host.RunTasks() > 0 {
			idle = time.Now()
		}
		if time.Since(idle) >= quiet {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func s3Region(region string) string {
	switch {
	case region != "":
		return region
	case os.Getenv("AWS_REGION") != "":
		return os.Getenv("AWS_REGION")
	}
	return "us-east-1"
}

// envCredentials reads static credentials from the standard AWS
// environment variables. Without them requests are anonymous.
type envCredentials struct{}

func (envCredentials) Retrieve(ctx context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.AnonymousCredentials{}.Retrieve(ctx)
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}
