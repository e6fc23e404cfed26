// Package extractor orchestrates a CD-224 extract run.
//
// A run is strictly single-threaded: one pass over the input, line at a
// time, no backtracking. The service performs the start-up steps (key-file
// resolution for the client, cryptor and hasher initialization) before the
// first line is read; any failure there is start-up fatal. Inside the loop,
// read or write failures abort the run immediately, leaving whatever output
// was already written in place.
package extractor

import (
	"bufio"
	"io"

	"cd224-extract-service/internal/assembler"
	"cd224-extract-service/internal/models"
	"cd224-extract-service/internal/parsers"
	"cd224-extract-service/internal/protect"
	"cd224-extract-service/internal/router"
	"cd224-extract-service/internal/validator"
	"cd224-extract-service/pkg/errors"
	"cd224-extract-service/pkg/logger"

	"github.com/google/uuid"
)

// maxLineSize bounds a single report line. Print lines are 133 columns;
// this leaves generous headroom for transfer artifacts.
const maxLineSize = 64 * 1024

// Config holds the per-run settings resolved by the caller.
type Config struct {
	// ClientID selects the encryption key file via the key map.
	ClientID string

	// KeyMapPath is the XML client-to-key-file mapping.
	KeyMapPath string

	// SaltFilePath feeds the hasher's one-time salt fetch.
	SaltFilePath string

	// ProtectPAN is the protection switch: when false the encrypted PAN is
	// omitted from output (hash and truncated forms are always written).
	ProtectPAN bool

	// FlushEvery is the accepted-record flush threshold (default 100).
	FlushEvery int
}

// Collaborators are the injected external capabilities. Nil fields fall
// back to the shipped defaults.
type Collaborators struct {
	Cryptor  protect.PANCryptor
	Hasher   protect.PANHasher
	Verifier protect.MerchantVerifier
}

// Streams are the four output destinations of a run. The caller owns the
// underlying resources and must close them on every exit path.
type Streams struct {
	Valid   io.Writer
	Invalid io.Writer
	Summary io.Writer
	Card    io.Writer
}

// Service runs CD-224 extracts. Construction performs all start-up steps;
// a constructed service is ready to parse.
type Service struct {
	config    *Config
	protector *protect.Protector
	verifier  protect.MerchantVerifier
	logger    logger.Logger
}

// NewService resolves the client's key file, initializes the cryptor and
// hasher, and returns a ready service. All failure modes here are
// start-up fatal: they prevent any parsing.
func NewService(config *Config, collab *Collaborators) (*Service, error) {
	if config == nil {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "config", nil, nil)
	}
	if collab == nil {
		collab = &Collaborators{}
	}

	cryptor := collab.Cryptor
	if cryptor == nil {
		cryptor = protect.NewAESCryptor()
	}
	hasher := collab.Hasher
	if hasher == nil {
		hasher = protect.NewHMACHasher()
	}
	verifier := collab.Verifier
	if verifier == nil {
		verifier = protect.NewNumericMerchantVerifier()
	}

	keyMap, err := protect.LoadKeyMap(config.KeyMapPath)
	if err != nil {
		return nil, errors.StartupError(errors.CodeKeyResolution, config.KeyMapPath, err)
	}
	keyFile, err := keyMap.ResolveKeyFile(config.ClientID)
	if err != nil {
		return nil, errors.StartupError(errors.CodeKeyResolution, config.ClientID, err)
	}

	if err := cryptor.SetKeyFile(keyFile); err != nil {
		return nil, errors.StartupError(errors.CodeCryptorUnavailable, keyFile, err)
	}
	salt, err := hasher.SaltString(config.SaltFilePath)
	if err != nil {
		return nil, errors.StartupError(errors.CodeHasherUnavailable, config.SaltFilePath, err)
	}

	log := logger.GetGlobalLogger().WithComponent("extractor")
	log.WithFields(logger.Fields{
		"client":      config.ClientID,
		"protect_pan": config.ProtectPAN,
	}).Info("Extract service initialized")

	return &Service{
		config:    config,
		protector: protect.NewPrepared(cryptor, hasher, salt),
		verifier:  verifier,
		logger:    log,
	}, nil
}

// Run processes one report from input and writes the four output streams.
// It returns the final counters alongside any run-fatal error; on failure
// the streams hold whatever was written before the abort (no rollback).
func (s *Service) Run(input io.Reader, streams Streams) (*models.SummaryCounters, error) {
	runID := uuid.NewString()
	log := s.logger.WithField("run_id", runID)

	counters := models.NewSummaryCounters()
	asm := assembler.New(
		&assembler.Config{IncludeEncryptedPAN: s.config.ProtectPAN},
		s.protector,
		counters,
	)
	val := validator.New(s.verifier, counters)
	out := router.New(streams.Valid, streams.Invalid, streams.Summary, streams.Card, &router.Config{
		FlushEvery:          s.config.FlushEvery,
		IncludeEncryptedPAN: s.config.ProtectPAN,
	})

	// Partial output must survive a mid-run abort.
	defer out.Flush()

	if err := out.WriteHeaders(); err != nil {
		return counters, err
	}

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := parsers.Sanitize(scanner.Text())

		record, err := asm.ProcessLine(line)
		if err != nil {
			log.WithError(err).WithField("line_number", lineNumber).Error("Run aborted")
			return counters, err
		}
		if record == nil {
			continue
		}

		outcome := val.Validate(record)
		if err := out.Route(outcome); err != nil {
			log.WithError(err).WithField("line_number", lineNumber).Error("Run aborted")
			return counters, err
		}
	}
	if err := scanner.Err(); err != nil {
		runErr := errors.RunError(errors.CodeReadFailed, "line scan", err)
		log.WithError(runErr).WithField("line_number", lineNumber).Error("Run aborted")
		return counters, runErr
	}

	if err := out.WriteSummary(runID, counters); err != nil {
		return counters, err
	}
	if err := out.Flush(); err != nil {
		return counters, err
	}

	log.WithFields(logger.Fields{
		"lines":          lineNumber,
		"total_records":  counters.TotalAssembled,
		"accepted":       counters.Accepted,
		"rejected":       counters.Rejected,
		"request_counts": counters.RequestCounts,
		"report_date":    counters.ReportDate,
	}).Info("Extract run complete")

	return counters, nil
}
