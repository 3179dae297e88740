package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
)

func Start() {
	decimal.MarshalJSONWithoutQuotes = true

	bootstrap := zerolog.New(os.Stdout).With().Timestamp().Str(log.KeyAppName, constants.AppStorefront).Logger()

	bootstrap.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	bootstrap.Info().Msg("added listener for SIGINT and SIGTERM")

	cfg := config.InitConfig(bootstrap.WithContext(c), constants.AppStorefront)

	logger := log.InitLogger(cfg.Application.LogPath).
		Level(log.LevelFor(cfg.Application.Env)).
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Str(log.KeyTag, "main Start").
		Logger()
	c = logger.WithContext(c)

	order := ""
	fetchProducts := &cobra.Command{
		Use:   "fetch-products",
		Short: "Fetch the product catalog once and store the price snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetchProducts(cmd.Context(), cfg, order)
		},
	}
	fetchProducts.Flags().StringVar(&order, "order", "asc", "sort order of the fetched catalog (asc or desc)")

	rootCmd := &cobra.Command{Use: constants.AppStorefront, SilenceUsage: true}
	commands := []*cobra.Command{
		{
			Use:   "serve",
			Short: "Run storefront http server",
			Run: func(cmd *cobra.Command, args []string) {
				runServer(cmd.Context(), cfg)
			},
		},
		fetchProducts,
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
