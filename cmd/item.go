package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Sydwelll/nft-marketplace-backend/core/utils"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/ledger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Mint, inspect, buy and burn items",
}

var itemMintCmd = &cobra.Command{
	Use:   "mint <to> <resource-uri>",
	Short: "Mint a new item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		forSale, _ := cmd.Flags().GetBool("for-sale")
		priceFlag, _ := cmd.Flags().GetString("price")
		price, err := utils.ParseEther(priceFlag)
		if err != nil {
			return err
		}

		id, err := rt.service().Mint(ctx, market.MintRequest{
			To:          ledger.Account(args[0]),
			ResourceURI: args[1],
			ForSale:     forSale,
			SalePrice:   ledger.AmountFromInt(price),
		})
		if err != nil {
			return fmt.Errorf("mint failed: %w", err)
		}
		fmt.Println(id)
		return nil
	},
}

var itemShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := utils.ParseID(args[0])
		if err != nil {
			return err
		}
		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		item, err := rt.service().Item(ctx, ledger.ItemID(id))
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(market.NewItemResponse(item), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var itemBuyCmd = &cobra.Command{
	Use:   "buy <id> <buyer> <payment>",
	Short: "Purchase an item; payment is a decimal amount such as 1 or 0.5",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := utils.ParseID(args[0])
		if err != nil {
			return err
		}
		payment, err := utils.ParseEther(args[2])
		if err != nil {
			return err
		}
		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		st, err := rt.service().Purchase(ctx, ledger.ItemID(id), ledger.AmountFromInt(payment), ledger.Account(args[1]))
		if err != nil {
			return fmt.Errorf("purchase failed: %w", err)
		}
		rt.logger.Info("Purchase settled",
			zap.String("seller", string(st.Seller)),
			zap.String("proceeds", utils.FormatEther(st.Proceeds.Int())),
			zap.String("commission", utils.FormatEther(st.Commission.Int())),
		)
		return nil
	},
}

var itemBurnCmd = &cobra.Command{
	Use:   "burn <id> <owner>",
	Short: "Burn an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := utils.ParseID(args[0])
		if err != nil {
			return err
		}
		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()

		if err := rt.service().Burn(ctx, ledger.ItemID(id), ledger.Account(args[1])); err != nil {
			return fmt.Errorf("burn failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemMintCmd, itemShowCmd, itemBuyCmd, itemBurnCmd)

	itemMintCmd.Flags().Bool("for-sale", false, "List the item for sale")
	itemMintCmd.Flags().String("price", "0", "Sale price as a decimal amount")
}
