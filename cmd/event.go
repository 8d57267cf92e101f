package cmd

import (
	"context"

	"github.com/frahmantamala/courseware-platform/internal/core/events"
	"github.com/frahmantamala/courseware-platform/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus debugging commands",
}

var publishEventCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a sample payment.completed event",
	Long:  `Publish a sample payment.completed event through the in-process bus and print what a subscriber receives. Useful for checking subscriber wiring without a live payment flow.`,
	Run: func(cmd *cobra.Command, args []string) {
		publishSampleEvent()
	},
}

var (
	eventPaymentID   string
	eventUserID      string
	eventAmountCents int64
)

func publishSampleEvent() {
	log := logger.LoggerWrapper()

	bus := events.NewEventBus(log)
	bus.Subscribe(events.EventTypePaymentCompleted, func(ctx context.Context, event events.Event) error {
		log.Info("subscriber received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	sample := events.NewPaymentCompletedEvent(eventPaymentID, eventUserID, eventAmountCents, "cli")

	// sync publish so the subscriber output lands before the process exits
	if err := bus.PublishSync(context.Background(), sample); err != nil {
		log.Error("publish failed", "error", err)
		return
	}
	log.Info("sample event published", "event_id", sample.EventID())
}

func init() {
	publishEventCmd.Flags().StringVar(&eventPaymentID, "payment-id", "sample-payment", "payment id to embed in the event")
	publishEventCmd.Flags().StringVar(&eventUserID, "user-id", "sample-user", "user id to embed in the event")
	publishEventCmd.Flags().Int64Var(&eventAmountCents, "amount-cents", 9900, "amount to embed in the event")

	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
