package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sydwelll/nft-marketplace-backend/core/loader"
	"github.com/Sydwelll/nft-marketplace-backend/core/logger"
	"github.com/Sydwelll/nft-marketplace-backend/core/middleware/auth"
	"github.com/Sydwelll/nft-marketplace-backend/core/middleware/rayid"
	"github.com/Sydwelll/nft-marketplace-backend/feature/integrity"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/Sydwelll/nft-marketplace-backend/docs/swagger"
)

// @title NFT Marketplace API
// @version 1.0
// @description API for minting, selling and burning unique items.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the marketplace server",
	Long:  `Starts the HTTP server and initializes all enabled features. The ledger is deployed on first start when server.operator is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		rt, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := rt.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if rt.client == nil {
			logg.Info("Journal storage disabled; events are kept in the database only")
		}

		marketFeature := market.NewFeature(rt.db, rt.publisher(), logg)
		svc := marketFeature.Service()

		if rt.cfg.Server.HasOperator() {
			if err := svc.Deploy(ctx, ledger.Account(rt.cfg.Server.Operator)); err != nil {
				logg.Fatal("Failed to deploy ledger", zap.Error(err))
			}
		}
		if operator, err := svc.Operator(ctx); err != nil {
			logg.Warn("Ledger not deployed; write operations will fail until it is", zap.Error(err))
		} else {
			logg = logg.With(zap.String("operator", string(operator)))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(marketFeature)
		mgr.Register(integrity.NewFeature(rt.client, rt.cfg.Storage.Bucket, logg, rt.db))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			if err := app.Listen(":" + rt.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
