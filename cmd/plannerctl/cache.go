package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/course-planner-api/internal/repository"
	"github.com/noah-isme/course-planner-api/internal/service"
	"github.com/noah-isme/course-planner-api/pkg/cache"
)

func newCacheCmd(deps *cliDeps) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the shared catalog cache",
	}
	var source string
	flushCmd := &cobra.Command{
		Use:   "flush",
		Short: "Drop cached catalog responses from Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cache.NewRedis(cmd.Context(), deps.cfg.Redis, 3*time.Second)
			if err != nil {
				return fmt.Errorf("connect redis %s: %w", cache.Addr(deps.cfg.Redis), err)
			}
			repo := repository.NewCacheRepository(client, deps.logger)
			defer repo.Close()

			svc := service.NewCacheService(repo, nil, 0, deps.logger, true)
			removed, err := svc.FlushSource(cmd.Context(), source)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached responses on %s\n", removed, cache.Addr(deps.cfg.Redis))
			return nil
		},
	}
	flushCmd.Flags().StringVar(&source, "source", "", "only flush one upstream (planetterp or umdio)")
	cacheCmd.AddCommand(flushCmd)
	return cacheCmd
}
