package cmd

import (
	"fmt"

	"github.com/Sydwelll/nft-marketplace-backend/core/utils"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/ledger"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Fund and inspect account balances",
}

var accountDepositCmd = &cobra.Command{
	Use:   "deposit <account> <amount>",
	Short: "Credit funds to an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		amount, err := utils.ParseEther(args[1])
		if err != nil {
			return err
		}
		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		balance, err := rt.service().Deposit(ctx, ledger.Account(args[0]), ledger.AmountFromInt(amount))
		if err != nil {
			return err
		}
		fmt.Println(utils.FormatEther(balance.Int()))
		return nil
	},
}

var accountBalanceCmd = &cobra.Command{
	Use:   "balance <account>",
	Short: "Show an account balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		balance, err := rt.service().Balance(ctx, ledger.Account(args[0]))
		if err != nil {
			return err
		}
		fmt.Println(utils.FormatEther(balance.Int()))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountDepositCmd, accountBalanceCmd)
}
