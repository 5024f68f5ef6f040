package serve

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/turbolytics/formsync/internal/config"
	"github.com/turbolytics/formsync/internal/server"
)

func NewCommand() *cobra.Command {
	var configPath string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the spreadsheet menu and form-submit hook over HTTP",
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
			l := logger.Named("formsync.serve")

			// flag, then FORMSYNC_ADDR, then server.addr from the config file
			v.SetDefault("addr", c.Server.Addr)
			addr := v.GetString("addr")

			rt, err := config.Initialize(ctx, c, l)
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(ctx); err != nil {
					l.Error("closing runtime", zap.Error(err))
				}
			}()

			l.Info("serving",
				zap.String("variant", string(c.Variant)),
				zap.String("trigger", string(rt.Triggers.State.Current())),
			)

			s := server.New(rt.Synchronizer, rt.Triggers, l)
			if rt.Notifier != nil {
				s.RegisterNotifier(rt.Notifier)
			}
			return s.Start(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().String("addr", "", "Address to listen on, overrides server.addr")
	cmd.MarkFlagRequired("config")

	v.SetEnvPrefix("FORMSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.BindPFlag("addr", cmd.Flags().Lookup("addr"))

	return cmd
}
