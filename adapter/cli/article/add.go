package article

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/adapter/cli"
	"github.com/stockroom-app/stockroom/internal/inventory/domain"
)

var (
	modelID      int
	serial       string
	status       string
	spaceID      int
	departmentID int
	containerID  int
	notes        string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register an article",
	Long: `Register an article of an existing model. The article gets the next
free number and is registered by the signed-in user.

Examples:
  stockroom article add --model 3 --serial PF-2K4L
  stockroom article add --model 3 --space 2 --department 1 --status in_use
  stockroom article add --model 5 --container 12 --notes "charger"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := domain.ParseStatus(status)
		if err != nil {
			return err
		}
		app, _, err := cli.RequireLogin(cmd)
		if err != nil {
			return err
		}

		a := &domain.Article{
			ModelID:      modelID,
			SerialNumber: serial,
			Status:       st,
			SpaceID:      cli.OptionalID(spaceID),
			DepartmentID: cli.OptionalID(departmentID),
			ContainerID:  cli.OptionalID(containerID),
			Notes:        notes,
		}
		app.Articles.SetArticle(a)
		if !app.Articles.SaveArticle(cmd.Context()) {
			return cli.Rejected("register article")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Article registered: %d\n", a.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().IntVarP(&modelID, "model", "m", 0, "article model id")
	addCmd.Flags().StringVar(&serial, "serial", "", "serial number")
	addCmd.Flags().StringVarP(&status, "status", "s", "", "status (available, in_use, repair, retired)")
	addCmd.Flags().IntVar(&spaceID, "space", 0, "space id")
	addCmd.Flags().IntVar(&departmentID, "department", 0, "department id")
	addCmd.Flags().IntVar(&containerID, "container", 0, "id of the article this one is stored in")
	addCmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
}
