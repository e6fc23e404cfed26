package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cd224-extract-service/cmd/cd224extract/config"
	"cd224-extract-service/internal/extractor"
	"cd224-extract-service/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the extract command
var (
	inputFile    string
	source       string
	clientID     string
	clientNumber string
	keyMapPath   string
	saltFilePath string
	protectPAN   bool
	flushEvery   int
	outputDir    string
	nameTokens   []string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a CD-224 report into delimited, tokenized output files",
	Long: `Extract reads one CD-224 fixed-width report and produces four files
named from the source/client/date identifiers:

  <name>.valid.psv    pipe-delimited accepted records
  <name>.invalid.txt  rejected records with diagnostic context
  <name>.summary.log  run counters and the derived report date
  <name>.card.psv     PCI card extract (hash + encrypted PAN)

Examples:
  # Basic extract
  cd224extract extract --input report.txt --client ACME01 --client-number 0042 \
    --source EAST --key-map keymap.xml --salt-file salt.txt

  # Omit the encrypted PAN from output
  cd224extract extract --input report.txt --client ACME01 --client-number 0042 \
    --source EAST --key-map keymap.xml --salt-file salt.txt --protect-pan=false

  # Additional naming tokens and custom flush threshold
  cd224extract extract --input report.txt --client ACME01 --client-number 0042 \
    --source EAST --key-map keymap.xml --salt-file salt.txt \
    --name-token CYCLE2 --flush-every 500`,

	PreRunE: validateExtractFlags,
	RunE:    runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	// Required flags
	extractCmd.Flags().StringVarP(&inputFile, "input", "i", "", "path to the CD-224 report file (required)")
	extractCmd.Flags().StringVarP(&clientID, "client", "c", "", "client identifier for key-file lookup (required)")
	extractCmd.Flags().StringVar(&clientNumber, "client-number", "", "client number used in output file naming (required)")
	extractCmd.Flags().StringVarP(&source, "source", "s", "", "source identifier used in output file naming (required)")
	extractCmd.Flags().StringVar(&keyMapPath, "key-map", "", "path to the XML client-to-key-file mapping (required)")
	extractCmd.Flags().StringVar(&saltFilePath, "salt-file", "", "path to the hash salt file (required)")

	// Optional flags
	extractCmd.Flags().BoolVar(&protectPAN, "protect-pan", true, "include the encrypted PAN in output (protection switch)")
	extractCmd.Flags().IntVar(&flushEvery, "flush-every", 100, "accepted records between periodic flushes")
	extractCmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for the output files")
	extractCmd.Flags().StringSliceVar(&nameTokens, "name-token", []string{}, "up to two additional output-name tokens")

	// Mark required flags
	extractCmd.MarkFlagRequired("input")
	extractCmd.MarkFlagRequired("client")
	extractCmd.MarkFlagRequired("client-number")
	extractCmd.MarkFlagRequired("source")
	extractCmd.MarkFlagRequired("key-map")
	extractCmd.MarkFlagRequired("salt-file")

	// Bind flags to viper
	viper.BindPFlag("input", extractCmd.Flags().Lookup("input"))
	viper.BindPFlag("client", extractCmd.Flags().Lookup("client"))
	viper.BindPFlag("client-number", extractCmd.Flags().Lookup("client-number"))
	viper.BindPFlag("source", extractCmd.Flags().Lookup("source"))
	viper.BindPFlag("key-map", extractCmd.Flags().Lookup("key-map"))
	viper.BindPFlag("salt-file", extractCmd.Flags().Lookup("salt-file"))
	viper.BindPFlag("protect-pan", extractCmd.Flags().Lookup("protect-pan"))
	viper.BindPFlag("flush-every", extractCmd.Flags().Lookup("flush-every"))
	viper.BindPFlag("output-dir", extractCmd.Flags().Lookup("output-dir"))
}

func validateExtractFlags(cmd *cobra.Command, args []string) error {
	// Viper values allow overrides from config file and environment
	inputFile = viper.GetString("input")
	clientID = viper.GetString("client")
	clientNumber = viper.GetString("client-number")
	source = viper.GetString("source")
	keyMapPath = viper.GetString("key-map")
	saltFilePath = viper.GetString("salt-file")
	protectPAN = viper.GetBool("protect-pan")
	flushEvery = viper.GetInt("flush-every")
	outputDir = viper.GetString("output-dir")

	if err := validateFileExists(inputFile, "input report file"); err != nil {
		return err
	}
	if err := validateFileExists(keyMapPath, "key map file"); err != nil {
		return err
	}
	if err := validateFileExists(saltFilePath, "salt file"); err != nil {
		return err
	}

	if len(nameTokens) > 2 {
		return fmt.Errorf("at most two name tokens are supported, got %d", len(nameTokens))
	}
	if flushEvery < 0 {
		return fmt.Errorf("flush-every cannot be negative")
	}

	if info, err := os.Stat(outputDir); err != nil || !info.IsDir() {
		return fmt.Errorf("output directory does not exist: %s", outputDir)
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	extractorConfig, err := config.CreateExtractorConfig(clientID, keyMapPath, saltFilePath, protectPAN, flushEvery)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "extract", nil, err)
	}

	// Start-up: key resolution and collaborator initialization happen here,
	// before the input is opened.
	service, err := extractor.NewService(extractorConfig, nil)
	if err != nil {
		return err
	}

	logicalName := config.BuildLogicalName(source, clientNumber, nameTokens, time.Now())
	paths := config.BuildOutputPaths(outputDir, logicalName)

	input, err := os.Open(inputFile)
	if err != nil {
		return errors.FileError(errors.CodeFileNotFound, inputFile, err)
	}
	defer input.Close()

	outputs := make([]*os.File, 0, 4)
	defer func() {
		// All output resources are released on every exit path.
		for _, f := range outputs {
			f.Close()
		}
	}()

	openOutput := func(path string) (*os.File, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.FileError(errors.CodeFileCreate, path, err)
		}
		outputs = append(outputs, f)
		return f, nil
	}

	valid, err := openOutput(paths.Valid)
	if err != nil {
		return err
	}
	invalid, err := openOutput(paths.Invalid)
	if err != nil {
		return err
	}
	summary, err := openOutput(paths.Summary)
	if err != nil {
		return err
	}
	card, err := openOutput(paths.Card)
	if err != nil {
		return err
	}

	counters, err := service.Run(input, extractor.Streams{
		Valid:   valid,
		Invalid: invalid,
		Summary: summary,
		Card:    card,
	})
	if err != nil {
		return err
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Extract complete: %d total, %d accepted, %d rejected\n",
			counters.TotalAssembled, counters.Accepted, counters.Rejected)
		fmt.Fprintf(os.Stderr, "Outputs written under %s\n", filepath.Join(outputDir, logicalName))
	}

	return nil
}
