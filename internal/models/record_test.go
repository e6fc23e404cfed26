package models

import (
	"strings"
	"testing"
)

func TestColumns_MatchRow(t *testing.T) {
	record := &ExtractRecord{}
	columns := Columns()
	row := record.Row()

	if got := len(strings.Split(row, "|")); got != len(columns) {
		t.Errorf("Row() has %d fields, Columns() has %d", got, len(columns))
	}
	if got := len(strings.Split(HeaderRow(), "|")); got != len(columns) {
		t.Errorf("HeaderRow() has %d fields, Columns() has %d", got, len(columns))
	}
}

func TestRow_FieldPositions(t *testing.T) {
	record := &ExtractRecord{
		FacilityDate:    "01012024",
		TransactionDate: "01152024",
		PANHash:         "abc123",
		PrincipalNumber: "0034",
	}

	fields := strings.Split(record.Row(), "|")
	columns := Columns()
	byName := make(map[string]string, len(columns))
	for i, name := range columns {
		byName[name] = fields[i]
	}

	expected := map[string]string{
		"FacilityDate":    "01012024",
		"TransactionDate": "01152024",
		"PANHash":         "abc123",
		"PrincipalNumber": "0034",
		"MerchantNumber":  "",
	}
	for name, want := range expected {
		if got := byName[name]; got != want {
			t.Errorf("column %s = %q, want %q", name, got, want)
		}
	}
}

func TestRecordContext_ResetForHeader(t *testing.T) {
	rc := NewRecordContext()

	// Populate everything as a prior record would have
	rc.Record.TransactionDate = "01152024"
	rc.Record.PANHash = "oldhash"
	rc.Record.IssuerAmount = "000000125.95"
	rc.Record.MerchantNumber = "123456789012"
	rc.Record.BusinessID = "987654321098"
	rc.Record.MerchantDBAName = "ACME SUPPLY CO"
	rc.Record.MerchantCity = "SPRINGFIELD"
	rc.Record.MerchantZip = "627011234"

	rc.ResetForHeader("123456789", "01012024", "0012", "0034")

	// Batch, account, transaction and merchant-summary fields cleared
	cleared := map[string]string{
		"TransactionDate": rc.Record.TransactionDate,
		"PANHash":         rc.Record.PANHash,
		"IssuerAmount":    rc.Record.IssuerAmount,
		"MerchantNumber":  rc.Record.MerchantNumber,
		"BusinessID":      rc.Record.BusinessID,
	}
	for name, got := range cleared {
		if got != "" {
			t.Errorf("%s = %q, want cleared after header reset", name, got)
		}
	}

	// Merchant detail fields persist until replaced
	if rc.Record.MerchantDBAName != "ACME SUPPLY CO" {
		t.Errorf("MerchantDBAName = %q, want persisted", rc.Record.MerchantDBAName)
	}
	if rc.Record.MerchantCity != "SPRINGFIELD" {
		t.Errorf("MerchantCity = %q, want persisted", rc.Record.MerchantCity)
	}
	if rc.Record.MerchantZip != "627011234" {
		t.Errorf("MerchantZip = %q, want persisted", rc.Record.MerchantZip)
	}

	// Header-derived fields applied
	if rc.BIN != "123456789" {
		t.Errorf("BIN = %q, want %q", rc.BIN, "123456789")
	}
	if rc.Record.FacilityDate != "01012024" {
		t.Errorf("FacilityDate = %q, want %q", rc.Record.FacilityDate, "01012024")
	}
	if rc.Record.SystemNumber != "0012" || rc.Record.PrincipalNumber != "0034" {
		t.Errorf("System/Principal = %q/%q, want 0012/0034",
			rc.Record.SystemNumber, rc.Record.PrincipalNumber)
	}
}

func TestParseReportDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{"Valid date", "01152024", false},
		{"Valid with surrounding spaces", " 01152024 ", false},
		{"Invalid month", "13152024", true},
		{"Invalid day", "01332024", true},
		{"Too short", "0115202", true},
		{"Empty", "", true},
		{"Non-numeric", "ABCDEFGH", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReportDate(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ParseReportDate(%q) error = %v, wantError %v", tt.input, err, tt.wantError)
			}
		})
	}
}

func TestSummaryCounters_DeriveReportDate(t *testing.T) {
	sc := NewSummaryCounters()

	if err := sc.DeriveReportDate("01012024"); err != nil {
		t.Fatalf("DeriveReportDate() error = %v", err)
	}
	if sc.ReportDate != "01/02/2024" {
		t.Errorf("ReportDate = %q, want %q", sc.ReportDate, "01/02/2024")
	}

	// Frozen after first derivation
	if err := sc.DeriveReportDate("06152024"); err != nil {
		t.Fatalf("DeriveReportDate() error = %v", err)
	}
	if sc.ReportDate != "01/02/2024" {
		t.Errorf("ReportDate = %q, want frozen at %q", sc.ReportDate, "01/02/2024")
	}
}

func TestSummaryCounters_DeriveReportDate_MonthRollover(t *testing.T) {
	sc := NewSummaryCounters()

	if err := sc.DeriveReportDate("12312024"); err != nil {
		t.Fatalf("DeriveReportDate() error = %v", err)
	}
	if sc.ReportDate != "01/01/2025" {
		t.Errorf("ReportDate = %q, want %q", sc.ReportDate, "01/01/2025")
	}
}

func TestSummaryCounters_Accumulation(t *testing.T) {
	sc := NewSummaryCounters()

	sc.RecordAssembled()
	sc.RecordAssembled()
	sc.RecordAccepted("000000125.95")
	sc.RecordRejected()
	sc.AddRequestCount(5)
	sc.AddRequestCount(12)

	if sc.TotalAssembled != 2 {
		t.Errorf("TotalAssembled = %d, want 2", sc.TotalAssembled)
	}
	if sc.Accepted != 1 || sc.Rejected != 1 {
		t.Errorf("Accepted/Rejected = %d/%d, want 1/1", sc.Accepted, sc.Rejected)
	}
	if sc.Accepted+sc.Rejected != sc.TotalAssembled {
		t.Errorf("accepted+rejected = %d, want totalAssembled %d",
			sc.Accepted+sc.Rejected, sc.TotalAssembled)
	}
	if sc.RequestCounts != 17 {
		t.Errorf("RequestCounts = %d, want 17", sc.RequestCounts)
	}
	if sc.AcceptedAmount.String() != "125.95" {
		t.Errorf("AcceptedAmount = %s, want 125.95", sc.AcceptedAmount.String())
	}
}
