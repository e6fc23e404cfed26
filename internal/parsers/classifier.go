package parsers

import (
	"strconv"
	"strings"
	"time"
)

// LineKind tags a sanitized report line with its classification.
type LineKind int

const (
	// KindNone marks a line matching no known pattern; the assembler
	// silently skips these.
	KindNone LineKind = iota
	KindHeader
	KindMerchantSummary
	KindDetail
	KindTrailer
	KindSummaryCount
)

// String returns the line kind name for logging.
func (k LineKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindMerchantSummary:
		return "merchant_summary"
	case KindDetail:
		return "detail"
	case KindTrailer:
		return "trailer"
	case KindSummaryCount:
		return "summary_count"
	default:
		return "none"
	}
}

// summaryCountLabels are the five request-category label lines. Their counts
// are summed into a single cumulative counter.
var summaryCountLabels = []string{
	"RETRIEVAL REQUESTS",
	"ORIGINAL REQUESTS",
	"MC IMAGE REQUEST",
	"VISA IMAGE REQUESTS",
	"CHARGEBACK REQUESTS",
}

// Classify inspects a sanitized line against the ordered pattern predicates
// and returns its kind. The categories are mutually exclusive by
// construction of the source report; the first match wins. The merchant
// continuation line deliberately has no classification: the assembler
// consumes it positionally after a merchant-summary line.
func Classify(line string) LineKind {
	switch {
	case isHeaderLine(line):
		return KindHeader
	case isMerchantSummaryLine(line):
		return KindMerchantSummary
	case isDetailLine(line):
		return KindDetail
	case isTrailerLine(line):
		return KindTrailer
	case isSummaryCountLine(line):
		return KindSummaryCount
	default:
		return KindNone
	}
}

func isHeaderLine(line string) bool {
	return strings.Contains(line, HeaderFormMarker) &&
		(strings.Contains(line, HeaderCycleFC) || strings.Contains(line, HeaderCycleCB)) &&
		strings.Contains(line, HeaderPageMarker)
}

func isMerchantSummaryLine(line string) bool {
	return strings.Contains(line, MerchantNumberMarker) &&
		strings.Contains(line, MerchantBusinessIDMarker) &&
		strings.Contains(line, MerchantDBPCMarker) &&
		strings.Contains(line, MerchantConfRtrvlMarker) &&
		strings.Contains(line, MerchantLetterMarker) &&
		strings.Contains(line, MerchantMailFlagMarker)
}

// isDetailLine applies the loosened detail check: a valid MMDDYYYY date at
// the transaction-date column and an integer at the file-sequence column.
// Earlier report versions required more fields; the relaxation is intentional.
func isDetailLine(line string) bool {
	return isReportDate(ExtractAt(line, 1, 8)) &&
		isNumeric(ExtractAt(line, 49, 9))
}

func isTrailerLine(line string) bool {
	return strings.Contains(line, TrailerVisaRequestMarker) &&
		strings.Contains(line, TrailerEndpointMarker) &&
		strings.Contains(line, TrailerPOSDataMarker) &&
		strings.Contains(line, TrailerRAMarker)
}

func isSummaryCountLine(line string) bool {
	if !isNumeric(ExtractAt(line, SummaryCountStart, SummaryCountLength)) {
		return false
	}
	for _, label := range summaryCountLabels {
		if strings.Contains(line, label) {
			return true
		}
	}
	return false
}

func isReportDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	_, err := time.Parse("01022006", s)
	return err == nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
