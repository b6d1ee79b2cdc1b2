package article

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/adapter/cli"
	"github.com/stockroom-app/stockroom/internal/inventory/domain"
	invPersistence "github.com/stockroom-app/stockroom/internal/inventory/infrastructure/persistence"
)

var (
	filterStatus     string
	filterModel      int
	filterSpace      int
	filterDepartment int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles",
	Long: `List articles with their model, location and department.

Examples:
  stockroom article list
  stockroom article list --status repair
  stockroom article list --space 2 --department 1`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := invPersistence.ArticleFilter{
			ModelID:      filterModel,
			SpaceID:      filterSpace,
			DepartmentID: filterDepartment,
		}
		if filterStatus != "" {
			st, err := domain.ParseStatus(filterStatus)
			if err != nil {
				return err
			}
			filter.Status = st
		}

		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}

		articles, err := app.Articles.LoadArticles(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list articles: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(articles) == 0 {
			fmt.Fprintln(out, "No articles found.")
			return nil
		}
		fmt.Fprintf(out, "Articles (%d):\n", len(articles))
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, a := range articles {
			printSummary(out, a)
		}
		return nil
	},
}

func printSummary(out io.Writer, a *domain.Article) {
	model := fmt.Sprint(a.ModelID)
	if a.Model != nil {
		model = a.Model.String()
	}
	fmt.Fprintf(out, "%s %5d  %s\n", statusIcon(a.Status), a.ID, model)
	if a.SerialNumber != "" {
		fmt.Fprintf(out, "         Serial: %s\n", a.SerialNumber)
	}
	if a.Space != nil {
		fmt.Fprintf(out, "         Space: %s\n", a.Space.Name)
	}
}

func statusIcon(s domain.Status) string {
	switch s {
	case domain.StatusInUse:
		return "[>]"
	case domain.StatusRepair:
		return "[!]"
	case domain.StatusRetired:
		return "[-]"
	default:
		return "[ ]"
	}
}

func init() {
	listCmd.Flags().StringVarP(&filterStatus, "status", "s", "", "filter by status (available, in_use, repair, retired)")
	listCmd.Flags().IntVarP(&filterModel, "model", "m", 0, "filter by article model id")
	listCmd.Flags().IntVar(&filterSpace, "space", 0, "filter by space id")
	listCmd.Flags().IntVar(&filterDepartment, "department", 0, "filter by department id")
}
