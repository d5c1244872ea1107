package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/assetvault/internal/buildinfo"
	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/blobstore"
	"github.com/dmitrijs2005/assetvault/internal/server/config"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/assetvault/internal/server/services"
)

type assetAdmin interface {
	Delete(ctx context.Context, owner string, reqs []models.DeleteRequest) (*models.DeletionResult, error)
	Purge(ctx context.Context, owner string) (*models.PurgeResult, error)
	List(ctx context.Context, owner string, page, pageSize int64) (*models.AssetPage, error)
}

type env struct {
	repos  repomanager.RepositoryManager
	assets assetAdmin
}

func (e *env) Close(ctx context.Context) {
	_ = e.repos.Close(ctx)
}

var configPath string

// openEnv connects to the stores named by the configuration.
var openEnv = func(ctx context.Context, cfg *config.Config) (*env, error) {
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	rm, err := repomanager.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	blobs, err := blobstore.New(ctx, cfg)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("blob store init error: %w", err)
	}
	as, err := services.NewAssetService(blobs, rm, cfg, logger)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, err
	}
	return &env{repos: rm, assets: as}, nil
}

func loadConfig() *config.Config {
	if configPath == "" {
		return config.LoadConfigArgs(nil)
	}
	return config.LoadConfigArgs([]string{"-c", configPath})
}

// withEnv opens the stores, runs fn and closes them again.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer e.Close(context.WithoutCancel(ctx))
	return fn(ctx, e)
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "assetctl",
		Short:        "assetvault operator CLI",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "JSON configuration file")
	cmd.AddCommand(
		newMigrateCmd(),
		newListCmd(),
		newDeleteCmd(),
		newPurgeCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply metadata store migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				if err := e.repos.RunMigrations(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func newListCmd() *cobra.Command {
	var page, pageSize int64
	cmd := &cobra.Command{
		Use:   "list <owner-email>",
		Short: "List one page of an owner's assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				res, err := e.assets.List(ctx, args[0], page, pageSize)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().Int64Var(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().Int64Var(&pageSize, "page-size", 50, "assets per page")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <owner-email> <public-id>=<meta-id>...",
		Short: "Delete an owner's assets from both stores",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := parseDeleteArgs(args[1:])
			if err != nil {
				return err
			}
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				res, err := e.assets.Delete(ctx, args[0], reqs)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

func newPurgeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge <owner-email>",
		Short: "Delete an owner, their assets and their blob folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to purge %s without --yes", args[0])
			}
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				res, err := e.assets.Purge(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the purge")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

// parseDeleteArgs splits "public_id=meta_id" pairs.
func parseDeleteArgs(args []string) ([]models.DeleteRequest, error) {
	reqs := make([]models.DeleteRequest, 0, len(args))
	for _, a := range args {
		publicID, metaID, ok := strings.Cut(a, "=")
		if !ok || publicID == "" || metaID == "" {
			return nil, fmt.Errorf("bad asset %q, want <public-id>=<meta-id>", a)
		}
		reqs = append(reqs, models.DeleteRequest{PublicID: publicID, MetaID: metaID})
	}
	return reqs, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
