package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fraktile/internal/config"
	"fraktile/internal/dispatch"
	"fraktile/internal/graphics"
	"fraktile/internal/logging"
	"fraktile/internal/model"
	"fraktile/internal/netserver"
	"fraktile/internal/portal"
	"fraktile/internal/tiling"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the coordinator: partitions the viewport and dispatches fragment tasks to workers",
	RunE:  runServer,
}

func init() {
	flags := serverCmd.Flags()
	flags.String("address", "0.0.0.0", "bind address")
	flags.Int("port", 8787, "bind port")
	flags.Int("width", 800, "canvas width in pixels")
	flags.Int("height", 800, "canvas height in pixels")
	flags.Int("tiles", 4, "tiling factor (splits per axis)")
	flags.Bool("graphics", true, "open the graphics window")
	flags.Bool("portal", false, "mirror rendering state to a WebSocket portal")
	flags.String("log-level", "info", "log level: debug, info, warn, error")

	viper.BindPFlags(flags)
}

func runServer(cmd *cobra.Command, args []string) error {
	// The worker subcommand binds its own address, port and log-level
	// flags under the same viper keys; rebind this command's flags so
	// they are the ones read below.
	viper.BindPFlags(cmd.Flags())

	cfg := config.Server{
		Address:  viper.GetString("address"),
		Port:     viper.GetInt("port"),
		Width:    viper.GetInt("width"),
		Height:   viper.GetInt("height"),
		Tiles:    viper.GetInt("tiles"),
		Graphics: viper.GetBool("graphics"),
		Portal:   viper.GetBool("portal"),
		LogLevel: viper.GetString("log-level"),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var portalEndpoint config.PortalEndpoint
	if cfg.Portal {
		var err error
		portalEndpoint, err = config.LoadPortalEndpoint()
		if err != nil {
			return err
		}
	}

	log := logging.New(cfg.LogLevel)

	planner := tiling.New(cfg.Width, cfg.Height, cfg.Tiles)
	viewport := model.Range{
		Min: model.Point{X: -2, Y: -2},
		Max: model.Point{X: 2, Y: 2},
	}
	fractals := defaultFractals()

	state := dispatch.New(planner, viewport, fractals, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := netserver.New(state, log)
	address := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx, address)
	}()

	if cfg.Portal {
		portalCh := state.EnablePortal()
		portalSrv := portal.New(log)
		portalAddr := fmt.Sprintf("%s:%d", portalEndpoint.Host, portalEndpoint.Port)
		go portalSrv.Broadcast(ctx, portalCh)
		go portalSrv.Run(ctx, portalAddr)
	}

	if cfg.Graphics {
		engine := graphics.New(state, log, cfg.Width, cfg.Height)
		go engine.ConsumeInbox(ctx)

		window := graphics.NewWindow(engine, state)
		defer window.Close()
		for !window.ShouldClose() && ctx.Err() == nil {
			window.Frame()
		}
		cancel()
	}

	select {
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			return err
		}
	case <-ctx.Done():
	}
	return nil
}

// defaultFractals is the ordered, non-empty list of selectable fractals
// cycled through with the K key.
func defaultFractals() []model.FractalDescriptor {
	return []model.FractalDescriptor{
		{Mandelbrot: &model.MandelbrotParams{}},
		{Julia: &model.JuliaParams{C: model.Point{X: -0.8, Y: 0.156}, DivergenceThresholdSquare: 4}},
		{IteratedSinZ: &model.IteratedSinZParams{C: model.Point{X: 1, Y: 0.1}}},
		{NewtonRaphsonZ3: &model.NewtonRaphsonZ3Params{}},
		{NewtonRaphsonZ4: &model.NewtonRaphsonZ4Params{}},
	}
}
