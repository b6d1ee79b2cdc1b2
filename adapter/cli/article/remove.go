package article

import (
	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/adapter/cli"
)

var removeCmd = &cobra.Command{
	Use:     "remove [id]",
	Short:   "Remove an article",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cli.ParseID(args[0])
		if err != nil {
			return err
		}
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}
		if !app.Articles.DeleteArticle(cmd.Context(), id) {
			return cli.Rejected("remove article")
		}
		return nil
	},
}

var retireCmd = &cobra.Command{
	Use:   "retire [id]",
	Short: "Take an article out of service",
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
		if !app.Articles.RetireArticle(cmd.Context(), id) {
			return cli.Rejected("retire article")
		}
		return nil
	},
}
