package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/general_store/cmd/storectl/output"
	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/service"
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Stock reports",
}

var stockLowCmd = &cobra.Command{
	Use:   "low",
	Short: "List products at or below their low-stock alert",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		r, done, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer done()

		items, err := service.NewCatalogService(r, nil, nil).LowStock(ctx)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(items) == 0 {
			output.Success(w, "no products are low on stock")
			return nil
		}

		output.Table(w, []string{"Product", "SKU", "Category", "Stock", "Alert"}, stockRows(items), func(row int) bool {
			return items[row].StockQuantity == 0
		})
		output.Warning(w, "%d products need restocking", len(items))
		return nil
	},
}

func stockRows(items []models.Product) [][]string {
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		cat := "-"
		if p.Category != nil {
			cat = p.Category.Name
		}
		rows = append(rows, []string{
			p.Name,
			p.SKU,
			cat,
			strconv.Itoa(p.StockQuantity) + " " + p.Unit,
			strconv.Itoa(p.LowStockAlert),
		})
	}
	return rows
}

func init() {
	stockCmd.AddCommand(stockLowCmd)
	rootCmd.AddCommand(stockCmd)
}
