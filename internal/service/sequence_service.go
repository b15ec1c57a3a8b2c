package service

import (
	"context"
	"fmt"

	"invoicer/internal/apperror"
	"invoicer/internal/logger"
	"invoicer/internal/model"
	"invoicer/internal/repository"
)

// SequenceService mints per-owner invoice numbers.
type SequenceService interface {
	NextInvoiceNumber(ctx context.Context, userID string) (string, error)
}

type sequenceService struct {
	counterRepo repository.CounterRepository
}

func NewSequenceService(counterRepo repository.CounterRepository) SequenceService {
	return &sequenceService{counterRepo: counterRepo}
}

// NextInvoiceNumber allocates the next value of the owner's invoice counter.
// There is no fallback numbering: a failed allocation fails the call.
func (s *sequenceService) NextInvoiceNumber(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperror.ErrUnauthorized
	}

	seq, err := s.counterRepo.Increment(ctx, userID, model.CounterKeyInvoice)
	if err != nil {
		log := logger.WithComponent(logger.ComponentInvoice)
		log.Error().Err(err).Str("user_id", userID).Msg("failed to allocate invoice number")
		return "", fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	return FormatInvoiceNumber(seq), nil
}

// FormatInvoiceNumber renders n as INV- followed by at least three digits.
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("INV-%03d", n)
}
