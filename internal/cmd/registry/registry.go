package registry

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal"
	"github.com/turbolytics/formsync/internal/config"
)

// NewCommand returns the command group for one registry variant,
// e.g. "employers sync".
func NewCommand(variant internal.Variant) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   string(variant),
		Short: fmt.Sprintf("Manages the %s registry", variant),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newSyncCommand(variant))
	return cmd
}

func newSyncCommand(variant internal.Variant) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: fmt.Sprintf("Replaces form choices from the %s registry", variant),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := config.NewFromFile(configPath)
			if err != nil {
				return err
			}
			if c.Variant != variant {
				return fmt.Errorf("config %s is for %q, not %q", configPath, c.Variant, variant)
			}

			logger, err := c.NewLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			l := logger.Named("formsync." + string(variant))

			rt, err := config.Initialize(ctx, c, l)
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(ctx); err != nil {
					l.Error("closing runtime", zap.Error(err))
				}
			}()

			catalog, err := rt.Synchronizer.Sync(ctx, variant)
			if err != nil {
				return err
			}

			l.Info("sync complete",
				zap.String("run_id", catalog.RunID),
				zap.Int("num_source_records", catalog.NumSourceRecords),
				zap.Int("num_ids_generated", catalog.NumIDsGenerated),
				zap.Int("num_fields_updated", catalog.NumFieldsUpdated),
				zap.Duration("duration", catalog.Duration()),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.MarkFlagRequired("config")

	return cmd
}
