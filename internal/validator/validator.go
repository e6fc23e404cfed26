// Package validator applies the acceptance rules to assembled records.
//
// Rejections are data, not errors: a rejected record is routed to the
// invalid stream with its key fields and the run continues. Nothing here is
// transient or retryable.
package validator

import (
	"fmt"
	"strings"

	"cd224-extract-service/internal/models"
	"cd224-extract-service/internal/protect"
	"cd224-extract-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Validator decides acceptance for assembled records and derives the run's
// report date from the first accepted record.
type Validator struct {
	verifier protect.MerchantVerifier
	counters *models.SummaryCounters
	logger   logger.Logger
}

// New creates a validator around the merchant verifier and shared counters.
func New(verifier protect.MerchantVerifier, counters *models.SummaryCounters) *Validator {
	return &Validator{
		verifier: verifier,
		counters: counters,
		logger:   logger.GetGlobalLogger().WithComponent("validator"),
	}
}

// Validate checks one assembled record and returns the outcome. Acceptance
// requires: facility date parses, transaction date parses, issuer amount is
// numeric, and the merchant number passes the external predicate. The first
// acceptance freezes the derived report date (facility date + 1 day).
func (v *Validator) Validate(record *models.ExtractRecord) *models.ValidationOutcome {
	outcome := &models.ValidationOutcome{
		Record: record,
		Row:    record.Row(),
	}

	if reason := v.rejectionReason(record); reason != "" {
		outcome.Accepted = false
		outcome.Reason = reason
		v.counters.RecordRejected()
		v.logger.WithFields(logger.Fields{
			"facility_date":    record.FacilityDate,
			"transaction_date": record.TransactionDate,
			"merchant_number":  record.MerchantNumber,
			"reason":           reason,
		}).Debug("Record rejected")
		return outcome
	}

	outcome.Accepted = true
	v.counters.RecordAccepted(record.IssuerAmount)
	if err := v.counters.DeriveReportDate(record.FacilityDate); err != nil {
		// Unreachable for accepted records: the facility date just parsed.
		v.logger.WithError(err).Warn("Failed to derive report date")
	}
	return outcome
}

// rejectionReason returns an empty string for acceptable records.
func (v *Validator) rejectionReason(record *models.ExtractRecord) string {
	if _, err := models.ParseReportDate(record.FacilityDate); err != nil {
		return fmt.Sprintf("invalid facility date %q", record.FacilityDate)
	}
	if _, err := models.ParseReportDate(record.TransactionDate); err != nil {
		return fmt.Sprintf("invalid transaction date %q", record.TransactionDate)
	}
	if _, err := decimal.NewFromString(strings.TrimSpace(record.IssuerAmount)); err != nil {
		return fmt.Sprintf("non-numeric issuer amount %q", record.IssuerAmount)
	}
	if !v.verifier.IsValidMerchant(record.MerchantNumber) {
		return fmt.Sprintf("invalid merchant number %q", record.MerchantNumber)
	}
	return ""
}
