package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/worklog-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/worklog-management/internal/notification/postgres"
	"github.com/frahmantamala/worklog-management/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers like the notification delivery poller.`,
}

// Notifier worker command
var notifierWorkerCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Start the notification delivery poller",
	Long:  `Poll the message table on a fixed interval and deliver new messages.`,
	Run: func(cmd *cobra.Command, args []string) {
		startNotifierWorker()
	},
}

func startNotifierWorker() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Format)
	log := logger.L()

	db, err := gorm.Open(gormPostgres.Open(cfg.Database.Source), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		log.Error("failed to init db", "error", err)
		os.Exit(1)
	}

	repo := notificationPostgres.NewMessageRepository(db)

	// Delivery target is the structured log for now; a mail relay or
	// webhook sender slots in here without touching the poller.
	deliver := func(ctx context.Context, messages []*notification.Message) error {
		for _, msg := range messages {
			log.Info("delivering message",
				"message_id", msg.ID,
				"company_id", msg.CompanyID,
				"subject", msg.Subject)
		}
		return nil
	}

	poller := notification.NewPoller(repo, deliver, cfg.Notifications.PollInterval, cfg.Notifications.BatchSize, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("received signal, stopping notifier", "signal", sig)
		cancel()
	}()

	log.Info("notifier worker is running. Press Ctrl+C to stop.")
	if err := poller.Run(ctx); err != nil && err != context.Canceled {
		log.Error("poller stopped with error", "error", err)
		os.Exit(1)
	}

	log.Info("notifier worker shutdown complete")
}

func init() {
	workerCmd.AddCommand(notifierWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
