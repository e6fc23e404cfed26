// Package router writes validated records to the run's output streams.
//
// One run holds four streams open for its duration: the valid pipe-delimited
// stream, the invalid diagnostic stream, the summary log stream, and the PCI
// card-extract stream. Accepted records go to the valid and card streams,
// rejections to the invalid stream with their key fields. The valid and card
// streams are flushed every FlushEvery accepted records to bound data-loss
// exposure without flushing per record; the owner of the underlying files is
// responsible for the final flush-and-close on every exit path.
package router

import (
	"bufio"
	"fmt"
	"io"

	"cd224-extract-service/internal/models"
	"cd224-extract-service/pkg/errors"
	"cd224-extract-service/pkg/logger"
)

// DefaultFlushEvery is the default accepted-record flush threshold.
const DefaultFlushEvery = 100

// trailerMatchLiteral is the fixed indicator written to the summary stream.
const trailerMatchLiteral = "VISA REQUEST ID/ACQ PC ENDPOINT/POS DATA/RA"

// Config holds router options.
type Config struct {
	// FlushEvery is the accepted-record count between periodic flushes of
	// the valid and card streams.
	FlushEvery int

	// IncludeEncryptedPAN mirrors the protection switch; it controls the
	// card-extract header line.
	IncludeEncryptedPAN bool
}

// DefaultConfig returns the default router configuration.
func DefaultConfig() *Config {
	return &Config{FlushEvery: DefaultFlushEvery}
}

// Router fans validated records out to the output streams.
type Router struct {
	config  *Config
	valid   *bufio.Writer
	invalid *bufio.Writer
	summary *bufio.Writer
	card    *bufio.Writer

	acceptedSinceFlush int
	logger             logger.Logger
}

// New creates a router over the four output streams.
func New(valid, invalid, summary, card io.Writer, config *Config) *Router {
	if config == nil {
		config = DefaultConfig()
	}
	if config.FlushEvery <= 0 {
		config.FlushEvery = DefaultFlushEvery
	}
	return &Router{
		config:  config,
		valid:   bufio.NewWriter(valid),
		invalid: bufio.NewWriter(invalid),
		summary: bufio.NewWriter(summary),
		card:    bufio.NewWriter(card),
		logger:  logger.GetGlobalLogger().WithComponent("router"),
	}
}

// WriteHeaders writes the one-time header rows: the valid stream's column
// header and the card stream's protection-switch-dependent header.
func (r *Router) WriteHeaders() error {
	if _, err := fmt.Fprintln(r.valid, models.HeaderRow()); err != nil {
		return errors.RunError(errors.CodeWriteFailed, "valid stream header", err)
	}

	cardHeader := `"HASH"`
	if r.config.IncludeEncryptedPAN {
		cardHeader = `"HASH"|"ENCRYPTED_PAN"`
	}
	if _, err := fmt.Fprintln(r.card, cardHeader); err != nil {
		return errors.RunError(errors.CodeWriteFailed, "card stream header", err)
	}
	return nil
}

// Route writes one validation outcome to its destination streams.
func (r *Router) Route(outcome *models.ValidationOutcome) error {
	if outcome.Accepted {
		return r.routeAccepted(outcome)
	}
	return r.routeRejected(outcome)
}

func (r *Router) routeAccepted(outcome *models.ValidationOutcome) error {
	if _, err := fmt.Fprintln(r.valid, outcome.Row); err != nil {
		return errors.RunError(errors.CodeWriteFailed, "valid stream", err)
	}

	cardRow := fmt.Sprintf("%q|%q", outcome.Record.PANHash, outcome.Record.EncryptedPAN)
	if _, err := fmt.Fprintln(r.card, cardRow); err != nil {
		return errors.RunError(errors.CodeWriteFailed, "card stream", err)
	}

	r.acceptedSinceFlush++
	if r.acceptedSinceFlush >= r.config.FlushEvery {
		r.acceptedSinceFlush = 0
		if err := r.valid.Flush(); err != nil {
			return errors.RunError(errors.CodeWriteFailed, "valid stream flush", err)
		}
		if err := r.card.Flush(); err != nil {
			return errors.RunError(errors.CodeWriteFailed, "card stream flush", err)
		}
		r.logger.Debug("Periodic flush of valid and card streams")
	}
	return nil
}

func (r *Router) routeRejected(outcome *models.ValidationOutcome) error {
	diag := fmt.Sprintf("REJECT facility_date=%s transaction_date=%s merchant_number=%s reason=%s row=%s",
		outcome.Record.FacilityDate,
		outcome.Record.TransactionDate,
		outcome.Record.MerchantNumber,
		outcome.Reason,
		outcome.Row)
	if _, err := fmt.Fprintln(r.invalid, diag); err != nil {
		return errors.RunError(errors.CodeWriteFailed, "invalid stream", err)
	}
	return nil
}

// WriteSummary writes the end-of-run summary as key:value lines.
func (r *Router) WriteSummary(runID string, counters *models.SummaryCounters) error {
	lines := []string{
		"file_type: CD-224",
		fmt.Sprintf("run_id: %s", runID),
		fmt.Sprintf("total_records: %d", counters.TotalAssembled),
		fmt.Sprintf("accepted_records: %d", counters.Accepted),
		fmt.Sprintf("rejected_records: %d", counters.Rejected),
		fmt.Sprintf("accepted_amount: %s", counters.AcceptedAmount.String()),
		fmt.Sprintf("request_counts: %d", counters.RequestCounts),
		fmt.Sprintf("trailer_match: %s", trailerMatchLiteral),
		fmt.Sprintf("report_date: %s", counters.ReportDate),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(r.summary, line); err != nil {
			return errors.RunError(errors.CodeWriteFailed, "summary stream", err)
		}
	}
	return nil
}

// Flush flushes all four streams. Called on every exit path, including the
// failure path, so partial output survives a run-fatal abort.
func (r *Router) Flush() error {
	var firstErr error
	for _, w := range []*bufio.Writer{r.valid, r.invalid, r.summary, r.card} {
		if err := w.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return errors.RunError(errors.CodeWriteFailed, "final flush", firstErr)
	}
	return nil
}
