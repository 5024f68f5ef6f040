package forms

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal/config"
)

func NewCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "forms",
		Short: "Manages forms in the configured form service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newSeedCommand())
	return cmd
}

func newSeedCommand() *cobra.Command {
	var configPath string
	var fixturesPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Creates forms from a fixtures file, replacing forms with the same id",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := config.NewFromFile(configPath)
			if err != nil {
				return err
			}

			logger, err := c.NewLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			l := logger.Named("formsync.forms.seed")

			fixtures, err := config.LoadFormFixtures(fixturesPath)
			if err != nil {
				return err
			}

			forms, closeForms, err := config.InitializeForms(ctx, c, l)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeForms(ctx); err != nil {
					l.Error("closing form service", zap.Error(err))
				}
			}()

			seeder, ok := forms.(config.FormSeeder)
			if !ok {
				return fmt.Errorf("form service %T cannot create forms", forms)
			}
			if err := config.SeedForms(ctx, seeder, fixtures); err != nil {
				return err
			}

			l.Info("seeded forms", zap.Int("count", len(fixtures)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&fixturesPath, "file", "f", "", "Path to forms fixtures file")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("file")

	return cmd
}
