package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/catalog"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/service"
	"github.com/noah-isme/course-planner-api/pkg/config"
	"github.com/noah-isme/course-planner-api/pkg/logger"
)

type courseLookup interface {
	ResolveCourse(ctx context.Context, code string) (*models.Course, error)
}

// cliDeps is filled lazily before a command runs. Tests preset the fields.
type cliDeps struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog courseLookup
}

func newRootCmd(deps *cliDeps) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Inspect catalog courses and serialized schedules from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return deps.init(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log catalog requests to stderr")

	root.AddCommand(newCheckCmd(deps), newExportCmd(deps), newCourseCmd(deps), newCacheCmd(deps))
	return root
}

func (d *cliDeps) init(verbose bool) error {
	if d.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		d.cfg = cfg
	}
	if d.logger == nil {
		level := "warn"
		if verbose {
			level = "debug"
		}
		l, err := logger.Build(logger.Options{Format: "console", Level: level})
		if err != nil {
			return err
		}
		d.logger = l
	}
	if d.catalog == nil {
		client := catalog.NewClient(catalog.Config{
			PlanetTerpBaseURL: d.cfg.Catalog.PlanetTerpBaseURL,
			UMDIOBaseURL:      d.cfg.Catalog.UMDIOBaseURL,
			Timeout:           d.cfg.Catalog.Timeout,
			Logger:            d.logger,
		})
		d.catalog = service.NewCatalogService(catalog.NewGateway(client, d.logger), nil, d.logger)
	}
	return nil
}
