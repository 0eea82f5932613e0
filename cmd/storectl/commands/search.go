package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/general_store/cmd/storectl/output"
	"github.com/Skotchmaster/general_store/internal/search"
	"github.com/Skotchmaster/general_store/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Manage the product search index",
}

var searchReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Push every product into Elasticsearch",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if len(cfg.ElasticURLs) == 0 {
			return errors.New("ELASTIC_URLS is not set")
		}
		es, err := search.NewClient(ctx, search.Config{
			Addresses: cfg.ElasticURLs,
			Username:  cfg.ElasticUser,
			Password:  cfg.ElasticPassword,
		})
		if err != nil {
			return err
		}

		r, done, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer done()

		svc := service.NewCatalogService(r, search.NewElastic(es, cfg.ElasticIndex), nil)
		n, err := svc.Reindex(ctx)
		if err != nil {
			return err
		}
		output.Success(cmd.OutOrStdout(), "indexed %d products into %q", n, cfg.ElasticIndex)
		return nil
	},
}

func init() {
	searchCmd.AddCommand(searchReindexCmd)
	rootCmd.AddCommand(searchCmd)
}
