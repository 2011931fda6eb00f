package cmd

import (
	"fmt"

	"github.com/Sydwelll/nft-marketplace-backend/feature/market/ledger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// deployCmd records the operator account and initializes the id counter.
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the ledger with an operator account",
	Long:  `Creates the ledger tables and records the operator account credited with sale commissions. Deploying again with the same operator is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		operator, _ := cmd.Flags().GetString("operator")
		if operator == "" {
			operator = rt.cfg.Server.Operator
		}

		if err := rt.service().Deploy(ctx, ledger.Account(operator)); err != nil {
			return fmt.Errorf("deploy failed: %w", err)
		}
		rt.logger.Info("Ledger deployed", zap.String("operator", operator))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deployCmd)
	deployCmd.Flags().String("operator", "", "Operator account (defaults to server.operator)")
}
