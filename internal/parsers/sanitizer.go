// Package parsers provides the line-level primitives for reading a CD-224
// chargeback/retrieval activity report.
//
// The report is an unstructured fixed-width print stream with several
// interleaved line kinds. This package supplies the three pure building
// blocks the assembler drives:
//
//   - Sanitize: strips report delimiter and control characters from a raw line
//   - field extraction: 1-based fixed-offset and marker-relative substring
//     extraction that never fails on short lines
//   - Classify: ordered predicate checks that tag a line with its kind
//
// All functions here are stateless; cross-line state lives in the assembler.
package parsers

import "strings"

// sanitizeReplacer removes the report's delimiter and non-printable
// characters in a single substitution pass. The pipe must go because it is
// the output delimiter; the rest are artifacts of the mainframe transfer.
var sanitizeReplacer = strings.NewReplacer(
	"|", "",
	"~", "",
	"\r", "",
	"\f", "",
	"\x00", "",
	"\x1a", "",
)

// Sanitize returns the line with delimiter and control characters removed.
func Sanitize(line string) string {
	return sanitizeReplacer.Replace(line)
}
