// Package config builds component configurations and output file paths for
// the extract CLI.
//
// Output-path construction from client/source identifiers is deliberately a
// boundary concern: the core pipeline works on opened streams and never sees
// file names.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cd224-extract-service/internal/extractor"
)

// OutputPaths are the four files one extract run produces.
type OutputPaths struct {
	Valid   string
	Invalid string
	Summary string
	Card    string
}

// BuildLogicalName constructs the run's logical file name from the source
// identifier, client number, up to two optional naming tokens, and the run
// date: CD224_<source>_<clientNumber>[_<token>...]_<YYYYMMDD>.
func BuildLogicalName(source, clientNumber string, nameTokens []string, runDate time.Time) string {
	parts := []string{"CD224"}
	if s := strings.TrimSpace(source); s != "" {
		parts = append(parts, s)
	}
	if c := strings.TrimSpace(clientNumber); c != "" {
		parts = append(parts, c)
	}
	for _, token := range nameTokens {
		if t := strings.TrimSpace(token); t != "" {
			parts = append(parts, t)
		}
	}
	parts = append(parts, runDate.Format("20060102"))
	return strings.Join(parts, "_")
}

// BuildOutputPaths derives the four output file paths from the logical name.
func BuildOutputPaths(outputDir, logicalName string) OutputPaths {
	base := filepath.Join(outputDir, logicalName)
	return OutputPaths{
		Valid:   base + ".valid.psv",
		Invalid: base + ".invalid.txt",
		Summary: base + ".summary.log",
		Card:    base + ".card.psv",
	}
}

// CreateExtractorConfig assembles the extract service configuration from the
// CLI inputs.
func CreateExtractorConfig(clientID, keyMapPath, saltFilePath string, protectPAN bool, flushEvery int) (*extractor.Config, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("client identifier is required")
	}
	if strings.TrimSpace(keyMapPath) == "" {
		return nil, fmt.Errorf("key map path is required")
	}
	if strings.TrimSpace(saltFilePath) == "" {
		return nil, fmt.Errorf("salt file path is required")
	}
	if flushEvery < 0 {
		return nil, fmt.Errorf("flush threshold cannot be negative")
	}

	return &extractor.Config{
		ClientID:     clientID,
		KeyMapPath:   keyMapPath,
		SaltFilePath: saltFilePath,
		ProtectPAN:   protectPAN,
		FlushEvery:   flushEvery,
	}, nil
}
