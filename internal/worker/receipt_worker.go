package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipts: renders the sale's PDF receipt
// and emails it to the customer address captured at checkout.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stolarpos/internal/infra"
	"stolarpos/internal/model"
	"stolarpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipts.
type ReceiptJobPayload struct {
	SaleID        string `json:"sale_id"`
	CustomerEmail string `json:"customer_email"`
}

// ReceiptMailer delivers a receipt email. *infra.Mailer satisfies it.
type ReceiptMailer interface {
	SendReceipt(to, subject, body, pdfPath string) error
}

type ReceiptWorker struct {
	sales       repository.SaleRepository
	mailer      ReceiptMailer
	storagePath string
	shopName    string
}

func NewReceiptWorker(sales repository.SaleRepository, mailer ReceiptMailer, storagePath, shopName string) *ReceiptWorker {
	return &ReceiptWorker{sales: sales, mailer: mailer, storagePath: storagePath, shopName: shopName}
}

// Process renders and mails one receipt. Malformed payloads and unknown sales
// are logged and dropped; mail failures are returned so the pool retries.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}
	if payload.CustomerEmail == "" {
		log.Warn().Str("sale_id", payload.SaleID).Msg("receipt_worker: empty customer_email, skipping")
		return nil
	}
	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("receipt_worker: invalid sale_id")
		return nil
	}

	sale, err := w.sales.FindByID(ctx, saleID)
	if err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("receipt_worker: sale not found")
		return nil
	}

	pdfPath, err := infra.GenerateReceiptPDF(sale, w.shopName, w.storagePath)
	if err != nil {
		return fmt.Errorf("receipt_worker: %w", err)
	}

	subject := fmt.Sprintf("Your receipt from %s", w.shopName)
	if err := w.mailer.SendReceipt(payload.CustomerEmail, subject, receiptBody(sale, w.shopName), pdfPath); err != nil {
		if errors.Is(err, infra.ErrMailerDisabled) {
			log.Warn().Str("sale_id", payload.SaleID).Msg("receipt_worker: mailer disabled, receipt kept on disk")
			return nil
		}
		return fmt.Errorf("receipt_worker: %w", err)
	}

	log.Info().Str("sale_id", payload.SaleID).Str("to", payload.CustomerEmail).Msg("receipt_worker: receipt sent")
	return nil
}

func receiptBody(sale *model.Sale, shopName string) string {
	return fmt.Sprintf("Thank you for shopping at %s.\n\nTotal: %s\nPaid by: %s\nDate: %s\n\nYour receipt is attached.",
		shopName, sale.Total.StringFixed(2), sale.PaymentMethod, sale.Date.Local().Format("02 Jan 2006 15:04"))
}
