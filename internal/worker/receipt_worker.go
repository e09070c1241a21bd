package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipts: renders the sale receipt as a
// PDF and mails it to the customer. SMTP sends go through the circuit
// breaker so a dead relay fails fast instead of stalling the pool.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/config"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/infra"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipts.
type ReceiptJobPayload struct {
	SaleID  string `json:"sale_id"`
	ToEmail string `json:"to_email"`
}

// ReceiptWorker renders and mails sale receipts.
type ReceiptWorker struct {
	sales   repository.SaleRepository
	mailer  *infra.Mailer
	breaker *infra.CircuitBreaker
	cfg     *config.Config
}

func NewReceiptWorker(sales repository.SaleRepository, mailer *infra.Mailer, breaker *infra.CircuitBreaker, cfg *config.Config) *ReceiptWorker {
	return &ReceiptWorker{sales: sales, mailer: mailer, breaker: breaker, cfg: cfg}
}

// Process generates the PDF and sends the email. A returned error requeues the
// job for another attempt.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil // malformed payloads never succeed, don't retry
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("receipt_worker: empty to_email, skipping")
		return nil
	}
	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("receipt_worker: invalid sale_id")
		return nil
	}

	sale, err := w.sales.FindByID(ctx, saleID)
	if err != nil {
		return fmt.Errorf("receipt_worker: load sale %s: %w", payload.SaleID, err)
	}

	pdfPath, err := infra.GenerateReceiptPDF(sale, w.cfg.BusinessName, w.cfg.ReceiptStoragePath)
	if err != nil {
		return fmt.Errorf("receipt_worker: render pdf: %w", err)
	}

	subject := fmt.Sprintf("%s — receipt %s", w.cfg.BusinessName, sale.SaleNumber)
	body := fmt.Sprintf("Thank you for your purchase. Your receipt %s is attached.", sale.SaleNumber)

	sendErr := w.breaker.Execute(func() error {
		return w.mailer.SendReceipt(payload.ToEmail, subject, body, pdfPath)
	})
	if sendErr != nil {
		return fmt.Errorf("receipt_worker: send to %s: %w", payload.ToEmail, sendErr)
	}

	log.Info().Str("to", payload.ToEmail).Str("sale", sale.SaleNumber).Msg("receipt_worker: receipt sent")
	return nil
}
