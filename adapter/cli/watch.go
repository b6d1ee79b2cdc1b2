package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
	"github.com/stockroom-app/stockroom/internal/shared/infrastructure/eventbus"
)

var watchQueue string

var watchCmd = &cobra.Command{
	Use:   "watch [pattern...]",
	Short: "Print inventory changes published to RabbitMQ",
	Long: `Print the change events every stockroom instance publishes to RabbitMQ
until interrupted. Patterns use topic syntax and default to every change.

Examples:
  stockroom watch
  stockroom watch 'inventory.article.*' 'inventory.article_model.#'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := RequireLogin(cmd)
		if err != nil {
			return err
		}
		if app.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is not set")
		}

		patterns := args
		if len(patterns) == 0 {
			patterns = []string{"inventory.#"}
		}

		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:       app.RabbitMQURL,
			QueueName: watchQueue,
			Logger:    log(),
		}, nil)
		if err != nil {
			return err
		}
		defer consumer.Close()

		consumer.RegisterConsumer(eventbus.ConsumerFunc{
			Patterns: patterns,
			Fn:       printEvent(cmd.OutOrStdout()),
		})

		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %v, press Ctrl+C to stop.\n", patterns)
		if err := consumer.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func printEvent(out io.Writer) func(context.Context, *domain.EntityChanged) error {
	return func(_ context.Context, e *domain.EntityChanged) error {
		by := e.Metadata.Username
		if by == "" {
			by = "-"
		}
		_, err := fmt.Fprintf(out, "%s  %-9s %s %d  by %s  [%s]\n",
			e.OccurredAt.Local().Format("2006-01-02 15:04:05"),
			e.Change, e.EntityType, e.EntityID, by, shortID(e.EventID))
		return err
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func init() {
	watchCmd.Flags().StringVar(&watchQueue, "queue", "", "durable queue name (default: a temporary queue)")
	rootCmd.AddCommand(watchCmd)
}
