package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tarefa360/tarefa360/internal/notify"
	"github.com/tarefa360/tarefa360/pkg/logger"
)

var (
	notifySeverity string
	notifyTitle    string
	notifyMessage  string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Raise a notification on the event bus",
	Long:  `Raise a notification through the same bus and subscribers the server uses, for checking log output and severities.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch notify.Severity(notifySeverity) {
		case notify.SeveritySuccess, notify.SeverityInfo, notify.SeverityWarn, notify.SeverityError:
		default:
			return fmt.Errorf("unknown severity %q", notifySeverity)
		}

		lg := logger.LoggerWrapper()
		bus := newEventBus(lg)
		notifier := notify.NewBusNotifier(bus, lg)

		notifier.Notify(context.Background(), notify.Notification{
			Severity: notify.Severity(notifySeverity),
			Title:    notifyTitle,
			Message:  notifyMessage,
		})

		bus.Wait()
		lg.Info("notification raised", "title", notifyTitle)
		return nil
	},
}

func init() {
	notifyCmd.Flags().StringVar(&notifySeverity, "severity", string(notify.SeverityInfo), "success, info, warn or error")
	notifyCmd.Flags().StringVar(&notifyTitle, "title", "Tarefa360", "notification title")
	notifyCmd.Flags().StringVar(&notifyMessage, "message", "test notification", "notification message")
}
