package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/general_store/cmd/storectl/output"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/internal/service"
	"github.com/Skotchmaster/general_store/internal/transport"
)

var defaultCategories = []transport.CreateCategoryRequest{
	{Name: "Grocery", Description: "Rice, flour, pulses and daily staples", SortOrder: 1},
	{Name: "Beverages", Description: "Tea, juices and soft drinks", SortOrder: 2},
	{Name: "Household", Description: "Cleaning and home supplies", SortOrder: 3},
	{Name: "Personal Care", Description: "Soap, shampoo and toiletries", SortOrder: 4},
	{Name: "Snacks", Description: "Biscuits, chips and sweets", SortOrder: 5},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default categories if they are missing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		r, done, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer done()

		created, err := seedCategories(ctx, r)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(created) == 0 {
			output.Muted(w, "all default categories already exist")
			return nil
		}
		for _, name := range created {
			output.Success(w, "category %s", name)
		}
		return nil
	},
}

func seedCategories(ctx context.Context, r *repo.GormRepo) ([]string, error) {
	svc := service.NewCatalogService(r, nil, nil)
	existing, err := svc.ListCategories(ctx, false)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[strings.ToLower(c.Name)] = true
	}

	var created []string
	for _, req := range defaultCategories {
		if have[strings.ToLower(req.Name)] {
			continue
		}
		if _, err := svc.CreateCategory(ctx, req); err != nil {
			return created, err
		}
		created = append(created, req.Name)
	}
	return created, nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
