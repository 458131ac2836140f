package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fraktile/internal/config"
	"fraktile/internal/logging"
	"fraktile/internal/workerloop"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run one or more compute-node workers against a coordinator",
	RunE:  runWorker,
}

func init() {
	flags := workerCmd.Flags()
	flags.String("name", "", "worker name reported to the coordinator (default: generated)")
	flags.String("address", "127.0.0.1", "coordinator address")
	flags.Int("port", 8787, "coordinator port")
	flags.Uint32("maximal-work-load", 500, "maximal work load advertised to the coordinator")
	flags.Int("count", 1, "number of worker loops to run in this process")
	flags.String("log-level", "info", "log level: debug, info, warn, error")

	viper.BindPFlags(flags)
}

func runWorker(cmd *cobra.Command, args []string) error {
	name := viper.GetString("name")
	if name == "" {
		name = "worker-" + uuid.NewString()
	}

	cfg := config.Worker{
		Name:            name,
		Address:         viper.GetString("address"),
		Port:            viper.GetInt("port"),
		MaximalWorkLoad: viper.GetUint32("maximal-work-load"),
		Count:           viper.GetInt("count"),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(viper.GetString("log-level"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return workerloop.RunFleet(ctx, cfg.Name, cfg.Address, cfg.Port, cfg.MaximalWorkLoad, cfg.Count, log)
}
