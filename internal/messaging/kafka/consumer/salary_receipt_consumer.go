package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-courier/internal/events"
	"go-courier/internal/salary"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeSalarySettled turns settlement events into payout receipts: a PDF
// is rendered from the event payload, written under receiptDir and the
// file path recorded on the payout row. Receipt generation is idempotent;
// redelivered events just overwrite the same file.
func ConsumeSalarySettled(
	ctx context.Context,
	reader *kafkago.Reader,
	salaryService salary.Service,
	receiptDir string,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.salary_settled")
	log.Info("salary settled consumer started", zap.String("receipt_dir", receiptDir))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("salary settled consumer stopped")
				return
			}
			log.Error("fetch salary settled message failed", zap.Error(err))
			continue
		}

		var event events.SalarySettledEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode salary settled event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		path, err := writeReceipt(receiptDir, event)
		if err != nil {
			log.Error("write payout receipt failed",
				zap.String("payout_id", event.PayoutID),
				zap.Error(err),
			)
			continue
		}

		if err := salaryService.AttachReceipt(ctx, event.PayoutID, path); err != nil {
			log.Error("attach payout receipt failed",
				zap.String("payout_id", event.PayoutID),
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit salary settled message failed", zap.Error(err))
			continue
		}

		log.Info("payout receipt generated",
			zap.String("payout_id", event.PayoutID),
			zap.String("driver_id", event.DriverID),
			zap.String("path", path),
		)
	}
}

func writeReceipt(dir string, event events.SalarySettledEvent) (string, error) {
	pdf, err := salary.BuildPayoutReceiptPDF(salary.ReceiptData{
		PayoutID:    event.PayoutID,
		DriverName:  event.DriverName,
		TotalAmount: event.TotalAmount,
		PaidAt:      event.PaidAt,
	})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("payout-%s.pdf", event.PayoutID))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
