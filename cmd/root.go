package cmd

import (
	"fmt"
	"os"

	"github.com/Sydwelll/nft-marketplace-backend/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "marketplace",
	Short: "NFT Marketplace Backend",
	Long: `Marketplace keeps a ledger of unique items: minting, fixed-price sales with
an operator commission, and burning. Every change is journaled and can be
mirrored to S3-compatible storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the debug preset gives ISO8601 timestamps on the terminal.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
