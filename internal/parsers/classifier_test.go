package parsers

import (
	"strings"
	"testing"
)

func detailFixture() string {
	return BuildFixtureLine(DetailLayout, map[string]string{
		"TransactionDate": "01152024",
		"AccountNumber":   "4111111111111111",
		"FileSeqNumber":   "000000123",
		"IssuerAmount":    "000000125.95",
	})
}

func summaryCountFixture(label, count string) string {
	return label + strings.Repeat(" ", SummaryCountStart-1-len(label)) + count
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected LineKind
	}{
		{
			name:     "Header with FC cycle marker",
			line:     "1CD-224/123456789   CHARGEBACK ACTIVITY   -FC-   SYS 0012 PRIN 0034  CYCLE DATE 01012024  PAGE    1",
			expected: KindHeader,
		},
		{
			name:     "Header with CB cycle marker",
			line:     "1CD-224/42   CHARGEBACK ACTIVITY   -CB-   CYCLE DATE 01012024  PAGE   12",
			expected: KindHeader,
		},
		{
			name:     "Form marker without cycle marker is not a header",
			line:     "1CD-224/123456789   CHARGEBACK ACTIVITY   CYCLE DATE 01012024  PAGE    1",
			expected: KindNone,
		},
		{
			name:     "Merchant summary requires all labels",
			line:     "  MERCHANT NUMBER - 123456789012     BUSINESS ID 987654321098 DBPC 0001 CONF RTRVL SUPP Y  12(B) LETTER N  MAIL FLAG Y",
			expected: KindMerchantSummary,
		},
		{
			name:     "Merchant summary missing one label is skipped",
			line:     "  MERCHANT NUMBER - 123456789012     BUSINESS ID 987654321098 DBPC 0001 CONF RTRVL SUPP Y  12(B) LETTER N",
			expected: KindNone,
		},
		{
			name:     "Detail line by date and sequence checks",
			line:     detailFixture(),
			expected: KindDetail,
		},
		{
			name: "Detail with invalid date is skipped",
			line: BuildFixtureLine(DetailLayout, map[string]string{
				"TransactionDate": "13452024",
				"FileSeqNumber":   "000000123",
			}),
			expected: KindNone,
		},
		{
			name: "Detail with non-numeric sequence is skipped",
			line: BuildFixtureLine(DetailLayout, map[string]string{
				"TransactionDate": "01152024",
				"FileSeqNumber":   "ABCDEFGHI",
			}),
			expected: KindNone,
		},
		{
			name:     "Trailer line",
			line:     "    VISA REQUEST ID 123456789012  ACQ PC ENDPOINT 12345678  POS DATA 001122334455  RA 05",
			expected: KindTrailer,
		},
		{
			name:     "Trailer missing POS DATA is skipped",
			line:     "    VISA REQUEST ID 123456789012  ACQ PC ENDPOINT 12345678  RA 05",
			expected: KindNone,
		},
		{
			name:     "Retrieval summary count line",
			line:     summaryCountFixture("RETRIEVAL REQUESTS", "000000005"),
			expected: KindSummaryCount,
		},
		{
			name:     "Chargeback summary count line",
			line:     summaryCountFixture("CHARGEBACK REQUESTS", "000000017"),
			expected: KindSummaryCount,
		},
		{
			name:     "Summary label without numeric count is skipped",
			line:     summaryCountFixture("RETRIEVAL REQUESTS", "NOT A NUM"),
			expected: KindNone,
		},
		{
			name:     "Blank line",
			line:     "",
			expected: KindNone,
		},
		{
			name:     "Narrative line",
			line:     "  END OF REPORT  ",
			expected: KindNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.line); got != tt.expected {
				t.Errorf("Classify() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLineKind_String(t *testing.T) {
	tests := []struct {
		kind     LineKind
		expected string
	}{
		{KindNone, "none"},
		{KindHeader, "header"},
		{KindMerchantSummary, "merchant_summary"},
		{KindDetail, "detail"},
		{KindTrailer, "trailer"},
		{KindSummaryCount, "summary_count"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("LineKind.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
