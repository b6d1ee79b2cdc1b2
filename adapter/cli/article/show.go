package article

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/adapter/cli"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show an article with its relationships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cli.ParseID(args[0])
		if err != nil {
			return err
		}
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}

		a, ok := app.Articles.FindArticle(cmd.Context(), id)
		if !ok {
			return cli.Rejected("show article")
		}
		if a == nil {
			return fmt.Errorf("article %d not found", id)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Article %d\n", a.ID)
		fmt.Fprintf(out, "  status:     %s\n", a.Status)
		if a.Model != nil {
			fmt.Fprintf(out, "  model:      %s\n", a.Model)
			if a.Model.Type != nil {
				fmt.Fprintf(out, "  type:       %s\n", a.Model.Type.Name)
			}
		}
		if a.SerialNumber != "" {
			fmt.Fprintf(out, "  serial:     %s\n", a.SerialNumber)
		}
		if a.Space != nil {
			fmt.Fprintf(out, "  space:      %s\n", a.Space.Name)
		}
		if a.Department != nil {
			fmt.Fprintf(out, "  department: %s\n", a.Department)
		}
		if a.Container != nil {
			fmt.Fprintf(out, "  stored in:  %d\n", a.Container.ID)
		}
		registered := a.RegisteredAt.Format("2006-01-02 15:04")
		if a.RegisteredBy != nil {
			registered += " by " + a.RegisteredBy.String()
		}
		fmt.Fprintf(out, "  registered: %s\n", registered)
		if a.RetiredAt != nil {
			fmt.Fprintf(out, "  retired:    %s\n", a.RetiredAt.Format("2006-01-02"))
		}
		if a.Notes != "" {
			fmt.Fprintf(out, "  notes:      %s\n", a.Notes)
		}
		return nil
	},
}
