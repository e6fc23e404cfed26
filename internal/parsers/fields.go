package parsers

import "strings"

// FieldSpec names a fixed-column field: a 1-based start offset matching the
// printed report layout and a length in characters.
type FieldSpec struct {
	Name   string
	Start  int
	Length int
}

// ExtractAt returns the trimmed substring at the 1-based offset start with
// the given length. Lines shorter than the requested range yield the
// available prefix, or an empty string; out-of-range is never an error.
func ExtractAt(line string, start, length int) string {
	if start < 1 || length <= 0 || start > len(line) {
		return ""
	}
	end := start - 1 + length
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[start-1 : end])
}

// ExtractFields applies an ordered field table to a line and returns the
// extracted values keyed by field name.
func ExtractFields(line string, specs []FieldSpec) map[string]string {
	out := make(map[string]string, len(specs))
	for _, spec := range specs {
		out[spec.Name] = ExtractAt(line, spec.Start, spec.Length)
	}
	return out
}

// ExtractRelative locates marker in the line by substring search and returns
// the trimmed substring of the given length starting offset characters past
// the marker's end. The two-step locate+extract exists because label
// positions shift with the printed width of neighbouring values (the BIN in
// particular). A missing marker yields an empty field, not an error.
func ExtractRelative(line, marker string, offset, length int) string {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return ""
	}
	return ExtractAt(line, idx+len(marker)+offset+1, length)
}

// ExtractTokenAfterMarker locates marker and returns the following run of
// non-space characters. Used where the field width varies in print.
func ExtractTokenAfterMarker(line, marker string) string {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeft(line[idx+len(marker):], " ")
	if cut := strings.IndexByte(rest, ' '); cut >= 0 {
		rest = rest[:cut]
	}
	return rest
}

// Detail line layout. Offsets are the fixed column positions of this report
// version; the table is exhaustive for the detail line kind.
var DetailLayout = []FieldSpec{
	{Name: "TransactionDate", Start: 1, Length: 8},
	{Name: "AcquirerMember", Start: 10, Length: 6},
	{Name: "AccountNumber", Start: 17, Length: 19},
	{Name: "IssuerMember", Start: 37, Length: 6},
	{Name: "RequestType", Start: 44, Length: 4},
	{Name: "FileSeqNumber", Start: 49, Length: 9},
	{Name: "ChargebackCode", Start: 59, Length: 4},
	{Name: "LocationCode", Start: 64, Length: 5},
	{Name: "PostStatementDate", Start: 70, Length: 8},
	{Name: "BatchNumber", Start: 79, Length: 6},
	{Name: "ProcessingCode", Start: 86, Length: 4},
	{Name: "IssuerAmount", Start: 91, Length: 12},
	{Name: "SPCB", Start: 104, Length: 2},
	{Name: "CurrencyCode", Start: 107, Length: 3},
}

// Merchant continuation line layout (name/address block). This line is
// consumed positionally, never classified.
var MerchantContinuationLayout = []FieldSpec{
	{Name: "MerchantDBAName", Start: 1, Length: 25},
	{Name: "MerchantAddress", Start: 26, Length: 25},
	{Name: "CityOrPhone", Start: 51, Length: 18},
	{Name: "MerchantState", Start: 69, Length: 2},
	{Name: "MerchantZip", Start: 71, Length: 9},
}

// MarkerValueOffset is the single separating space between a printed label
// and its value.
const MarkerValueOffset = 1

// Header line markers. The BIN is marker-relative because its printed width
// varies; the rest are fixed lengths past their labels.
const (
	HeaderFormMarker   = "CD-224"
	HeaderBINMarker    = "CD-224/"
	HeaderCycleFC      = "-FC-"
	HeaderCycleCB      = "-CB-"
	HeaderPageMarker   = "PAGE"
	HeaderSystemMarker = "SYS"
	HeaderPrinMarker   = "PRIN"
	HeaderDateMarker   = "CYCLE DATE"

	HeaderSystemLength = 4
	HeaderPrinLength   = 4
	HeaderDateLength   = 8
)

// Merchant-summary line markers. Values sit directly after their labels.
const (
	MerchantNumberMarker     = "MERCHANT NUMBER -"
	MerchantBusinessIDMarker = "BUSINESS ID"
	MerchantDBPCMarker       = "DBPC"
	MerchantConfRtrvlMarker  = "CONF RTRVL SUPP"
	MerchantLetterMarker     = "LETTER"
	MerchantMailFlagMarker   = "MAIL FLAG"

	MerchantNumberLength     = 16
	MerchantBusinessIDLength = 12
	MerchantDBPCLength       = 4
	MerchantFlagLength       = 1
)

// Trailer line markers.
const (
	TrailerVisaRequestMarker = "VISA REQUEST ID"
	TrailerEndpointMarker    = "ACQ PC ENDPOINT"
	TrailerPOSDataMarker     = "POS DATA"
	TrailerRAMarker          = "RA"
	TrailerRAExtractMarker   = " RA"

	TrailerVisaRequestLength = 12
	TrailerEndpointLength    = 8
	TrailerPOSDataLength     = 12
	TrailerRALength          = 2
)

// Summary-count line layout: the count column shared by all five category
// label lines.
const (
	SummaryCountStart  = 41
	SummaryCountLength = 9
)
