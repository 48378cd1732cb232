package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/gompdf/printform/internal/batch"
	"github.com/gompdf/printform/internal/config"
	"github.com/gompdf/printform/pkg/api"
)

// policyFlags override configuration values for the run.
func policyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{Name: "page-height", Usage: "paper height, `PX`"},
		&cli.FloatFlag{Name: "page-width", Usage: "paper width, `PX`"},
		&cli.FloatFlag{Name: "dummy-row-height", Usage: "height of a single dummy row item, `PX`"},
		&cli.BoolFlag{Name: "repeat-header", Usage: "repeat header on every page"},
		&cli.BoolFlag{Name: "repeat-docinfo", Usage: "repeat document info on every page"},
		&cli.BoolFlag{Name: "repeat-rowheader", Usage: "repeat row header on every page"},
		&cli.BoolFlag{Name: "repeat-footer", Usage: "repeat footer on every page"},
		&cli.BoolFlag{Name: "repeat-footer-logo", Usage: "repeat footer logo on every page"},
		&cli.BoolFlag{Name: "dummy-row-items", Usage: "fill pages with dummy row items"},
		&cli.BoolFlag{Name: "dummy-row", Usage: "fill pages with a single dummy row"},
		&cli.BoolFlag{Name: "footer-spacer", Usage: "push footer down with a spacer"},
		&cli.BoolFlag{Name: "footer-spacer-dummy-row-items", Usage: "fill footer space with dummy row items"},
	}
}

// applyPolicyFlags overlays explicitly set flags on cfg.
func applyPolicyFlags(cmd *cli.Command, cfg *config.Config) {
	for name, dst := range map[string]*float64{
		"page-height":      &cfg.PageHeight,
		"page-width":       &cfg.PageWidth,
		"dummy-row-height": &cfg.DummyRowHeight,
	} {
		if cmd.IsSet(name) {
			*dst = cmd.Float(name)
		}
	}
	for name, dst := range map[string]*bool{
		"repeat-header":                 &cfg.RepeatHeader,
		"repeat-docinfo":                &cfg.RepeatDocInfo,
		"repeat-rowheader":              &cfg.RepeatRowHeader,
		"repeat-footer":                 &cfg.RepeatFooter,
		"repeat-footer-logo":            &cfg.RepeatFooterLogo,
		"dummy-row-items":               &cfg.InsertDummyRowItem,
		"dummy-row":                     &cfg.InsertDummyRow,
		"footer-spacer":                 &cfg.InsertFooterSpacer,
		"footer-spacer-dummy-row-items": &cfg.InsertFooterSpacerWithDummyRowItem,
	} {
		if cmd.IsSet(name) {
			*dst = cmd.Bool(name)
		}
	}
}

func converterFor(cmd *cli.Command, env *localEnv) (*api.Converter, error) {
	cfg := env.Cfg.Paginate
	applyPolicyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := api.DefaultOptions()
	opts.Config = cfg
	opts.Logger = env.Log
	opts.Debug = cmd.Root().Bool("debug") ||
		env.Cfg.Logging.ConsoleLogger.Level == "debug" || env.Cfg.Logging.FileLogger.Level == "debug"
	return api.NewWithOptions(opts), nil
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func isHTMLFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// expandSources replaces directories with HTML files found under them.
func expandSources(sources []string) ([]string, error) {
	var out []string
	for _, src := range sources {
		if isURL(src) {
			out = append(out, src)
			continue
		}
		fi, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("unable to access source '%s': %w", src, err)
		}
		if !fi.IsDir() {
			out = append(out, src)
			continue
		}
		var found []string
		err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isHTMLFile(p) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("unable to walk source directory '%s': %w", src, err)
		}
		sort.Sort(natural.StringSlice(found))
		out = append(out, found...)
	}
	return out, nil
}

// outputName derives destination file name from source.
func outputName(src string) string {
	name := filepath.Base(src)
	if isURL(src) {
		name = "index.html"
		if u, err := url.Parse(src); err == nil {
			if b := path.Base(u.Path); b != "/" && b != "." {
				name = b
			}
		}
	}
	if !isHTMLFile(name) {
		name += ".html"
	}
	return name
}

func runPaginate(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return errors.New("no source specified")
	}
	sources, err := expandSources(cmd.Args().Slice())
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		env.Log.Warn("No HTML documents found, nothing to do")
		return nil
	}

	conv, err := converterFor(cmd, env)
	if err != nil {
		return err
	}

	dst := cmd.String("out")
	if dst == "" {
		dst = "."
	}
	overwrite := cmd.Bool("overwrite")

	jobs := make([]batch.Job, 0, len(sources))
	for _, src := range sources {
		target := filepath.Join(dst, outputName(src))
		jobs = append(jobs, batch.Job{
			Name: src,
			Run: func(ctx context.Context, log *zap.Logger) error {
				if _, err := os.Stat(target); err == nil && !overwrite {
					return fmt.Errorf("output file already exists: %s", target)
				}
				c := conv.WithOption(api.WithLogger(log))
				var (
					rpt *api.Report
					err error
				)
				if isURL(src) {
					rpt, err = c.PaginateURL(src, target)
				} else {
					rpt, err = c.PaginateFile(src, target)
				}
				if err != nil {
					return err
				}
				for _, f := range rpt.Forms {
					if f.Err != nil {
						log.Warn("Print form dropped", zap.Int("index", f.Index), zap.String("id", f.ID), zap.Error(f.Err))
					}
				}
				log.Info("Print forms paginated", zap.String("to", target), zap.Int("forms", len(rpt.Forms)), zap.Int("pages", rpt.Pages()))
				return nil
			},
		})
	}

	sum := batch.NewRunner(env.Log).Run(ctx, jobs)
	if sum.Succeeded() != len(jobs) {
		env.Log.Warn("Some documents were not processed", zap.Int("total", len(jobs)), zap.Int("succeeded", sum.Succeeded()))
	}
	return sum.Err()
}

func runPreview(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)

	if cmd.Args().Len() != 2 {
		return errors.New("preview requires SOURCE and DESTINATION")
	}
	src, dst := cmd.Args().Get(0), cmd.Args().Get(1)

	conv, err := converterFor(cmd, env)
	if err != nil {
		return err
	}
	conv = conv.WithOption(api.WithDebugDrawBoxes(cmd.Bool("guides")))
	if title := cmd.String("title"); title != "" {
		conv = conv.WithOption(api.WithTitle(title))
	}

	rpt, err := conv.PreviewFile(src, dst)
	if err != nil {
		return err
	}
	if rpt.Failed() > 0 {
		env.Log.Warn("Some print forms are missing from preview", zap.Error(rpt.Err()))
	}
	env.Log.Info("Preview written", zap.String("to", dst), zap.Int("pages", rpt.Pages()))
	return nil
}
