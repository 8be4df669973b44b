package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tayloree/dealchef/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recipe matches and offers over HTTP",
	Long: "Start the JSON API. Offers are cached for the configured TTL and can be\n" +
		"reloaded with POST /api/offers/refresh.",
	Example: `  dealchef serve
  dealchef serve --addr 127.0.0.1:9090 --offers https://example.org/offers.json`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	addr := rt.cfg.Server.Addr
	if flagAddr != "" {
		addr = flagAddr
	}

	// Fail fast on a broken offer catalog instead of on the first request.
	if _, err := rt.loadOffers(cmd.Context()); err != nil {
		return err
	}

	srv := server.New(server.Options{
		Recipes:     rt.recipes,
		Offers:      rt.offers,
		Engine:      rt.engine,
		Aggregator:  rt.aggregator,
		Logger:      rt.logger,
		CORSOrigins: rt.cfg.Server.CORSOrigins,
		RateLimit:   rt.cfg.Server.RateLimit,
		RateBurst:   rt.cfg.Server.RateBurst,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, addr)
}
