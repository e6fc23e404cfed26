// Package models defines the data types assembled from a CD-224 report.
//
// A logical transaction record is built incrementally from several report
// lines: a page header contributes batch-level identifiers, a detail line
// contributes transaction and account fields, an optional merchant block
// contributes merchant fields, and the trailer line completes the record.
// RecordContext carries the in-progress record across line iterations;
// ExtractRecord is the finished, emit-ready unit.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Report date formats. Dates inside the report body are MMDDYYYY; the
// derived report date in the summary stream is MM/DD/YYYY.
const (
	ReportDateLayout  = "01022006"
	SummaryDateLayout = "01/02/2006"
)

// ExtractRecord is one assembled CD-224 transaction record.
// The raw PAN is never stored here; only its protected derivatives are.
type ExtractRecord struct {
	// Batch-level fields (header + detail)
	FacilityDate      string
	LocationCode      string
	PostStatementDate string
	AcquirerMember    string
	BatchNumber       string
	ProcessingCode    string
	IssuerAmount      string
	SPCB              string
	CurrencyCode      string

	// Account fields (protected derivatives of the PAN)
	EncryptedPAN string
	PANHash      string
	PANFirst6    string
	PANLast4     string

	// Transaction fields
	TransactionDate string
	IssuerMember    string
	RequestType     string
	FileSeqNumber   string
	ChargebackCode  string

	// Merchant summary fields (cleared on each new header)
	MerchantNumber       string
	BusinessID           string
	DBPC                 string
	ConfRetrievalSupport string
	Letter12B            string
	MailFlag             string

	// Merchant detail fields (persist across headers until replaced)
	MerchantDBAName      string
	MerchantAddress      string
	MerchantCity         string
	MerchantState        string
	MerchantZip          string
	MerchantTelephoneNum string

	// Request-protocol fields (trailer + header)
	VisaRequestID   string
	AcqPCEndpoint   string
	POSData         string
	RACode          string
	SystemNumber    string
	PrincipalNumber string
}

// Columns returns the valid-stream column names in output order.
func Columns() []string {
	return []string{
		"FacilityDate", "LocationCode", "PostStatementDate", "AcquirerMember",
		"BatchNumber", "ProcessingCode", "IssuerAmount", "SPCB", "CurrencyCode",
		"EncryptedPAN", "PANHash", "PANFirst6", "PANLast4",
		"TransactionDate", "IssuerMember", "RequestType", "FileSeqNumber",
		"ChargebackCode",
		"MerchantNumber", "BusinessID", "DBPC", "ConfRetrievalSupport",
		"Letter12B", "MailFlag",
		"MerchantDBAName", "MerchantAddress", "MerchantCity", "MerchantState",
		"MerchantZip", "MerchantTelephoneNum",
		"VisaRequestID", "AcqPCEndpoint", "POSData", "RACode",
		"SystemNumber", "PrincipalNumber",
	}
}

// HeaderRow returns the pipe-delimited header row for the valid stream.
func HeaderRow() string {
	return strings.Join(Columns(), "|")
}

// Row returns the record as a pipe-delimited data row, columns in
// Columns() order.
func (r *ExtractRecord) Row() string {
	return strings.Join([]string{
		r.FacilityDate, r.LocationCode, r.PostStatementDate, r.AcquirerMember,
		r.BatchNumber, r.ProcessingCode, r.IssuerAmount, r.SPCB, r.CurrencyCode,
		r.EncryptedPAN, r.PANHash, r.PANFirst6, r.PANLast4,
		r.TransactionDate, r.IssuerMember, r.RequestType, r.FileSeqNumber,
		r.ChargebackCode,
		r.MerchantNumber, r.BusinessID, r.DBPC, r.ConfRetrievalSupport,
		r.Letter12B, r.MailFlag,
		r.MerchantDBAName, r.MerchantAddress, r.MerchantCity, r.MerchantState,
		r.MerchantZip, r.MerchantTelephoneNum,
		r.VisaRequestID, r.AcqPCEndpoint, r.POSData, r.RACode,
		r.SystemNumber, r.PrincipalNumber,
	}, "|")
}

// String returns a short representation for logging. It never includes
// protected card material beyond the truncated forms.
func (r *ExtractRecord) String() string {
	return fmt.Sprintf("ExtractRecord{FacilityDate: %s, TransactionDate: %s, Merchant: %s, PAN: %s******%s}",
		r.FacilityDate, r.TransactionDate, r.MerchantNumber, r.PANFirst6, r.PANLast4)
}

// RecordContext is the mutable state carried across the line loop.
// Exactly one RecordContext is live per run. Fields are overwritten, never
// cleared, at emission; a new header resets batch-level state only.
type RecordContext struct {
	// Header-derived state
	BIN             string
	FacilityDate    string
	SystemNumber    string
	PrincipalNumber string

	// The record being built. Merchant detail fields survive header resets.
	Record ExtractRecord
}

// NewRecordContext creates an empty record context.
func NewRecordContext() *RecordContext {
	return &RecordContext{}
}

// ResetForHeader applies a new header line's state. Batch, account,
// transaction and merchant-summary fields are cleared; merchant detail
// fields (DBA name, address, city, state, zip, phone) deliberately persist
// until the next continuation line replaces them.
func (rc *RecordContext) ResetForHeader(bin, facilityDate, systemNumber, principalNumber string) {
	rc.BIN = bin
	rc.FacilityDate = facilityDate
	rc.SystemNumber = systemNumber
	rc.PrincipalNumber = principalNumber

	kept := rc.Record
	rc.Record = ExtractRecord{
		MerchantDBAName:      kept.MerchantDBAName,
		MerchantAddress:      kept.MerchantAddress,
		MerchantCity:         kept.MerchantCity,
		MerchantState:        kept.MerchantState,
		MerchantZip:          kept.MerchantZip,
		MerchantTelephoneNum: kept.MerchantTelephoneNum,
	}
	rc.Record.FacilityDate = facilityDate
	rc.Record.SystemNumber = systemNumber
	rc.Record.PrincipalNumber = principalNumber
}

// Snapshot returns a copy of the in-progress record for emission.
func (rc *RecordContext) Snapshot() ExtractRecord {
	return rc.Record
}

// ValidationOutcome is the accept/reject decision for one assembled record,
// used identically for the valid and invalid destinations.
type ValidationOutcome struct {
	Accepted bool
	Reason   string
	Row      string
	Record   *ExtractRecord
}

// SummaryCounters accumulates the running totals reported at end of run.
type SummaryCounters struct {
	TotalAssembled int
	Accepted       int
	Rejected       int

	// The five request-category count lines are summed into one counter.
	RequestCounts int64

	// Derived once from the first accepted record's facility date + 1 day.
	ReportDate string

	// Running total of accepted issuer amounts.
	AcceptedAmount decimal.Decimal
}

// NewSummaryCounters creates a zeroed counter set.
func NewSummaryCounters() *SummaryCounters {
	return &SummaryCounters{AcceptedAmount: decimal.Zero}
}

// RecordAssembled increments the total-assembled counter (one per trailer
// line matched).
func (sc *SummaryCounters) RecordAssembled() {
	sc.TotalAssembled++
}

// RecordAccepted increments the accepted counter and adds the issuer amount
// to the running total when it parses.
func (sc *SummaryCounters) RecordAccepted(issuerAmount string) {
	sc.Accepted++
	if amt, err := decimal.NewFromString(strings.TrimSpace(issuerAmount)); err == nil {
		sc.AcceptedAmount = sc.AcceptedAmount.Add(amt)
	}
}

// RecordRejected increments the rejected counter.
func (sc *SummaryCounters) RecordRejected() {
	sc.Rejected++
}

// AddRequestCount adds a summary-count line's value to the cumulative
// request counter.
func (sc *SummaryCounters) AddRequestCount(n int64) {
	sc.RequestCounts += n
}

// DeriveReportDate sets the report date to facilityDate + 1 calendar day,
// formatted MM/DD/YYYY, if it has not been derived yet. It is frozen for
// the remainder of the run once set.
func (sc *SummaryCounters) DeriveReportDate(facilityDate string) error {
	if sc.ReportDate != "" {
		return nil
	}
	t, err := ParseReportDate(facilityDate)
	if err != nil {
		return err
	}
	sc.ReportDate = t.AddDate(0, 0, 1).Format(SummaryDateLayout)
	return nil
}

// ParseReportDate parses an MMDDYYYY date as printed in the report body.
func ParseReportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(ReportDateLayout) {
		return time.Time{}, fmt.Errorf("invalid report date %q: want MMDDYYYY", s)
	}
	t, err := time.Parse(ReportDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid report date %q: %w", s, err)
	}
	return t, nil
}
