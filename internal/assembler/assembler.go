// Package assembler implements the CD-224 record assembly state machine.
//
// The assembler consumes sanitized lines one at a time, in report print
// order, and carries a single RecordContext across iterations. Header lines
// reset batch-level state, merchant-summary lines stage a one-line
// continuation expectation, detail lines populate transaction and account
// fields (running PAN protection as a side step), and trailer lines complete
// the record and hand back a snapshot for validation. Summary-count lines
// only touch the cumulative request counter.
//
// The legacy implementation tracked the "next line is the merchant
// continuation" condition with a side flag; here it is an explicit machine
// state so the transition table is total and reviewable.
package assembler

import (
	"strconv"
	"strings"

	"cd224-extract-service/internal/models"
	"cd224-extract-service/internal/parsers"
	"cd224-extract-service/internal/protect"
	"cd224-extract-service/pkg/errors"
	"cd224-extract-service/pkg/logger"
)

// State is the assembler's position in the line stream.
type State int

const (
	// StateAwaitingHeader is the initial state, before any header line.
	StateAwaitingHeader State = iota
	// StateInHeaderContext means header fields are populated and the
	// assembler is accumulating detail/merchant/trailer contributions.
	StateInHeaderContext
	// StateExpectingMerchantContinuation lasts exactly one line: the next
	// line is consumed positionally as the merchant name/address block,
	// regardless of its own content.
	StateExpectingMerchantContinuation
)

// Config holds assembler options.
type Config struct {
	// IncludeEncryptedPAN mirrors the protection switch: when false the
	// encrypted PAN is emitted as empty (the hash and truncated forms are
	// always populated).
	IncludeEncryptedPAN bool
}

// Assembler builds logical transaction records from classified lines.
type Assembler struct {
	config    *Config
	ctx       *models.RecordContext
	state     State
	protector *protect.Protector
	counters  *models.SummaryCounters
	logger    logger.Logger
}

// New creates an assembler around the given protector and counters.
func New(config *Config, protector *protect.Protector, counters *models.SummaryCounters) *Assembler {
	if config == nil {
		config = &Config{}
	}
	return &Assembler{
		config:    config,
		ctx:       models.NewRecordContext(),
		state:     StateAwaitingHeader,
		protector: protector,
		counters:  counters,
		logger:    logger.GetGlobalLogger().WithComponent("assembler"),
	}
}

// State returns the current machine state.
func (a *Assembler) State() State {
	return a.state
}

// Context returns the live record context. Exposed for tests.
func (a *Assembler) Context() *models.RecordContext {
	return a.ctx
}

// ProcessLine advances the state machine by one sanitized line. A non-nil
// record is returned exactly when a trailer line completes one; the caller
// owns validation and routing. Errors are run-fatal (card protection
// failure); data-quality problems are not errors here.
func (a *Assembler) ProcessLine(line string) (*models.ExtractRecord, error) {
	// The line after a merchant-summary line is always the merchant
	// name/address block, whatever else it may look like.
	if a.state == StateExpectingMerchantContinuation {
		a.consumeMerchantContinuation(line)
		a.state = StateInHeaderContext
		return nil, nil
	}

	switch kind := parsers.Classify(line); kind {
	case parsers.KindHeader:
		a.applyHeader(line)
		a.state = StateInHeaderContext
	case parsers.KindMerchantSummary:
		a.applyMerchantSummary(line)
		a.state = StateExpectingMerchantContinuation
	case parsers.KindDetail:
		if err := a.applyDetail(line); err != nil {
			return nil, err
		}
	case parsers.KindTrailer:
		return a.applyTrailer(line), nil
	case parsers.KindSummaryCount:
		a.applySummaryCount(line)
	case parsers.KindNone:
		// Silently skipped; no counters change.
	}
	return nil, nil
}

// applyHeader captures the header's batch identifiers and resets the record
// context. The BIN is located by marker search because its printed width
// varies.
func (a *Assembler) applyHeader(line string) {
	bin := parsers.ExtractTokenAfterMarker(line, parsers.HeaderBINMarker)
	facilityDate := parsers.ExtractRelative(line, parsers.HeaderDateMarker, parsers.MarkerValueOffset, parsers.HeaderDateLength)
	systemNumber := parsers.ExtractRelative(line, parsers.HeaderSystemMarker, parsers.MarkerValueOffset, parsers.HeaderSystemLength)
	principal := parsers.ExtractRelative(line, parsers.HeaderPrinMarker, parsers.MarkerValueOffset, parsers.HeaderPrinLength)

	a.ctx.ResetForHeader(bin, facilityDate, systemNumber, principal)

	a.logger.WithFields(logger.Fields{
		"bin":           bin,
		"facility_date": facilityDate,
		"system":        systemNumber,
		"principal":     principal,
	}).Debug("Header recognized, batch context reset")
}

// applyMerchantSummary extracts the labelled merchant identifiers and stages
// the continuation expectation.
func (a *Assembler) applyMerchantSummary(line string) {
	rec := &a.ctx.Record
	rec.MerchantNumber = parsers.ExtractRelative(line, parsers.MerchantNumberMarker, parsers.MarkerValueOffset, parsers.MerchantNumberLength)
	rec.BusinessID = parsers.ExtractRelative(line, parsers.MerchantBusinessIDMarker, parsers.MarkerValueOffset, parsers.MerchantBusinessIDLength)
	rec.DBPC = parsers.ExtractRelative(line, parsers.MerchantDBPCMarker, parsers.MarkerValueOffset, parsers.MerchantDBPCLength)
	rec.ConfRetrievalSupport = parsers.ExtractRelative(line, parsers.MerchantConfRtrvlMarker, parsers.MarkerValueOffset, parsers.MerchantFlagLength)
	rec.Letter12B = parsers.ExtractRelative(line, parsers.MerchantLetterMarker, parsers.MarkerValueOffset, parsers.MerchantFlagLength)
	rec.MailFlag = parsers.ExtractRelative(line, parsers.MerchantMailFlagMarker, parsers.MarkerValueOffset, parsers.MerchantFlagLength)
}

// consumeMerchantContinuation parses the merchant name/address block by
// fixed columns. The city column doubles as a telephone column: a numeric
// value (hyphens stripped) is a phone number, anything else is a city; the
// column is never populated as both.
func (a *Assembler) consumeMerchantContinuation(line string) {
	fields := parsers.ExtractFields(line, parsers.MerchantContinuationLayout)

	rec := &a.ctx.Record
	rec.MerchantDBAName = fields["MerchantDBAName"]
	rec.MerchantAddress = fields["MerchantAddress"]
	rec.MerchantState = fields["MerchantState"]
	rec.MerchantZip = fields["MerchantZip"]

	cityOrPhone := fields["CityOrPhone"]
	if isPhoneNumber(cityOrPhone) {
		rec.MerchantTelephoneNum = cityOrPhone
		rec.MerchantCity = ""
	} else {
		rec.MerchantCity = cityOrPhone
		rec.MerchantTelephoneNum = ""
	}
}

// applyDetail extracts the batch/account/transaction fields and protects the
// account number. Emission waits for the trailer line.
func (a *Assembler) applyDetail(line string) error {
	fields := parsers.ExtractFields(line, parsers.DetailLayout)

	rec := &a.ctx.Record
	rec.TransactionDate = fields["TransactionDate"]
	rec.AcquirerMember = fields["AcquirerMember"]
	rec.IssuerMember = fields["IssuerMember"]
	rec.RequestType = fields["RequestType"]
	rec.FileSeqNumber = fields["FileSeqNumber"]
	rec.ChargebackCode = fields["ChargebackCode"]
	rec.LocationCode = fields["LocationCode"]
	rec.PostStatementDate = fields["PostStatementDate"]
	rec.BatchNumber = fields["BatchNumber"]
	rec.ProcessingCode = fields["ProcessingCode"]
	rec.IssuerAmount = fields["IssuerAmount"]
	rec.SPCB = fields["SPCB"]
	rec.CurrencyCode = fields["CurrencyCode"]

	card, err := a.protector.Protect(fields["AccountNumber"])
	if err != nil {
		// Unprotected cardholder data must never reach output, so a
		// protection failure aborts the whole run.
		return errors.RunError(errors.CodeProtectionFailed, "detail line", err)
	}

	rec.PANHash = card.Hash
	rec.PANFirst6 = card.First6
	rec.PANLast4 = card.Last4
	if a.config.IncludeEncryptedPAN {
		rec.EncryptedPAN = card.Encrypted
	} else {
		rec.EncryptedPAN = ""
	}
	return nil
}

// applyTrailer extracts the request/endpoint fields and completes the
// record. A trailer without a preceding detail line still emits, populated
// with whatever fields were last set.
func (a *Assembler) applyTrailer(line string) *models.ExtractRecord {
	rec := &a.ctx.Record
	rec.VisaRequestID = parsers.ExtractRelative(line, parsers.TrailerVisaRequestMarker, parsers.MarkerValueOffset, parsers.TrailerVisaRequestLength)
	rec.AcqPCEndpoint = parsers.ExtractRelative(line, parsers.TrailerEndpointMarker, parsers.MarkerValueOffset, parsers.TrailerEndpointLength)
	rec.POSData = parsers.ExtractRelative(line, parsers.TrailerPOSDataMarker, parsers.MarkerValueOffset, parsers.TrailerPOSDataLength)
	rec.RACode = parsers.ExtractRelative(line, parsers.TrailerRAExtractMarker, parsers.MarkerValueOffset, parsers.TrailerRALength)

	a.counters.RecordAssembled()

	snapshot := a.ctx.Snapshot()
	return &snapshot
}

// applySummaryCount adds the count column's value to the single cumulative
// request counter. The five category lines are summed, not kept separate.
func (a *Assembler) applySummaryCount(line string) {
	value := parsers.ExtractAt(line, parsers.SummaryCountStart, parsers.SummaryCountLength)
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// The classifier already required this column to be numeric.
		return
	}
	a.counters.AddRequestCount(n)
}

// isPhoneNumber reports whether the city/phone column holds a telephone
// number: numeric after stripping hyphens.
func isPhoneNumber(s string) bool {
	s = strings.ReplaceAll(s, "-", "")
	if s == "" {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
