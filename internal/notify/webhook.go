package notify

import (
	"context"
	"fmt"
	"os"
	"time"

	"rankwatch/internal/api"
	"rankwatch/internal/logger"
	"rankwatch/internal/report"
	"rankwatch/internal/store"
	"rankwatch/internal/types"
)

// WebhookNotifier posts the rendered report to a Discord webhook, one
// message per chunk. DRY_RUN logs the rendered report instead.
type WebhookNotifier struct {
	cfg        *store.Config
	client     *api.Client
	webhookURL string
}

func NewWebhookNotifier(cfg *store.Config) *WebhookNotifier {
	return &WebhookNotifier{
		cfg: cfg,
		client: api.NewClient(
			api.WithTimeout(time.Duration(cfg.Report.TimeoutSeconds)*time.Second),
			api.WithLogging(true),
		),
		webhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, rep *types.Report) error {
	chunks := report.Format(*rep, n.cfg.Report.MessageLimit)

	if n.cfg.Mode == "DRY_RUN" {
		logger.Info(ctx, "DRY_RUN enabled, report not sent to Discord",
			"run_id", rep.RunID,
			"chunks", len(chunks),
		)
		for i, chunk := range chunks {
			logger.Info(ctx, "Report preview",
				"run_id", rep.RunID,
				"chunk", i+1,
				"content", chunk,
			)
		}
		logger.Delivery(ctx, rep.RunID, len(chunks), true)
		return nil
	}

	if n.webhookURL == "" {
		logger.Delivery(ctx, rep.RunID, len(chunks), false)
		return fmt.Errorf("notify: %w: DISCORD_WEBHOOK_URL missing", types.ErrNotificationFailure)
	}

	for i, chunk := range chunks {
		_, err := n.client.POST(ctx, n.webhookURL, map[string]string{"content": chunk})
		if err != nil {
			logger.Delivery(ctx, rep.RunID, len(chunks), false, "failed_chunk", i+1)
			return fmt.Errorf("notify chunk %d/%d: %w: %v", i+1, len(chunks), types.ErrNotificationFailure, err)
		}
	}

	logger.Delivery(ctx, rep.RunID, len(chunks), true)
	return nil
}
