// Package model holds the commands that manage article models.
package model

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/adapter/cli"
	"github.com/stockroom-app/stockroom/internal/inventory/domain"
)

// Cmd is the model command group
var Cmd = &cobra.Command{
	Use:   "model",
	Short: "Manage article models",
	Long:  `Add and list the makes and models articles are registered against.`,
}

var (
	typeID      int
	brand       string
	modelName   string
	description string
	filterType  int
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add an article model",
	Long: `Add an article model of an existing type.

Examples:
  stockroom model add ThinkPad --type 1 --brand Lenovo --model T14`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}

		m := &domain.ArticleModel{
			Name:        strings.TrimSpace(args[0]),
			Brand:       brand,
			Model:       modelName,
			Description: description,
			TypeID:      typeID,
		}
		app.Articles.SetArticleModel(m)
		if !app.Articles.SaveArticleModel(cmd.Context()) {
			return cli.Rejected("add article model")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Article model created: %d\n", m.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List article models",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}

		models, err := app.Catalog.ModelsOfType(cmd.Context(), filterType)
		if err != nil {
			return fmt.Errorf("failed to list article models: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(models) == 0 {
			fmt.Fprintln(out, "No article models found.")
			return nil
		}
		fmt.Fprintf(out, "Article models (%d):\n", len(models))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, m := range models {
			typeName := ""
			if m.Type != nil {
				typeName = m.Type.Name
			}
			fmt.Fprintf(out, "%4d  %-30s %-16s %s\n", m.ID, m, typeName, m.Model)
		}
		return nil
	},
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)

	addCmd.Flags().IntVarP(&typeID, "type", "t", 0, "article type id")
	addCmd.Flags().StringVar(&brand, "brand", "", "brand")
	addCmd.Flags().StringVar(&modelName, "model", "", "model designation")
	addCmd.Flags().StringVar(&description, "description", "", "model description")

	listCmd.Flags().IntVarP(&filterType, "type", "t", 0, "only models of this type")
}
