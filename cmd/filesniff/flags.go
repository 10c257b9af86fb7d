package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/gobeaver/filesniff"
)

var (
	outputPath   string
	outputFormat string
	yamlOutput   bool
	cacheDir     string
	confPath     string
	tidy         bool
	noDecompress bool
	numRecords   int64
	dryRun       bool
	verbose      bool
	quiet        bool
	logFormat    string
	keepGoing    bool
	skip         []string
)

func sniffFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "write the result to `FILE` instead of stdout",
			Destination: &outputPath,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "output format (csv, tsv, json, yaml)",
			Value:       string(filesniff.FormatCSV),
			Destination: &outputFormat,
		},
		&cli.BoolFlag{
			Name:        "yaml",
			Hidden:      true,
			Destination: &yamlOutput,
		},
		&cli.StringFlag{
			Name:        "cache-dir",
			Aliases:     []string{"C"},
			Usage:       "create the temporary directory under `DIR` and keep it after the run",
			Destination: &cacheDir,
		},
		&cli.StringFlag{
			Name:        "conf",
			Aliases:     []string{"c"},
			Usage:       "tester order configuration `FILE`; --dry-run shows the default",
			Destination: &confPath,
		},
		&cli.BoolFlag{
			Name:        "tidy",
			Aliases:     []string{"t"},
			Usage:       "read inputs in full (conflicts with --num-records)",
			Destination: &tidy,
		},
		&cli.BoolFlag{
			Name:        "no-decompress",
			Usage:       "do not decompress gzip or bzip2 inputs before testing",
			Destination: &noDecompress,
		},
		&cli.Int64Flag{
			Name:        "num-records",
			Aliases:     []string{"n"},
			Usage:       "number of records to read per input; a multiple of 4 avoids false negatives",
			Value:       filesniff.DefaultRecordBudget,
			Destination: &numRecords,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "print the effective tester order as YAML and exit",
			Destination: &dryRun,
		},
		&cli.StringSliceFlag{
			Name:        "skip",
			Usage:       "glob pattern of order entries to skip (repeatable)",
			Destination: &skip,
		},
		&cli.BoolFlag{
			Name:        "keep-going",
			Usage:       "record per-input errors in the result instead of stopping",
			Destination: &keepGoing,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "show debug log messages",
			Destination: &verbose,
		},
		&cli.BoolFlag{
			Name:        "quiet",
			Aliases:     []string{"q"},
			Usage:       "show only error log messages",
			Destination: &quiet,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

// checkFlags rejects flag combinations that cannot be expressed in Config.
func checkFlags(c *cli.Command) error {
	if c.IsSet("tidy") && c.IsSet("num-records") {
		return fmt.Errorf("%w: --tidy cannot be used with --num-records", filesniff.ErrInvalidOptions)
	}
	if c.IsSet("num-records") && numRecords <= 0 {
		return fmt.Errorf("%w: the number of records to read must be greater than 0", filesniff.ErrInvalidOptions)
	}
	if c.IsSet("verbose") && c.IsSet("quiet") {
		return fmt.Errorf("%w: --verbose cannot be used with --quiet", filesniff.ErrInvalidOptions)
	}
	if c.IsSet("yaml") && c.IsSet("format") {
		return fmt.Errorf("%w: --yaml cannot be used with --format", filesniff.ErrInvalidOptions)
	}
	return nil
}

// applyFlags overrides environment configuration with explicitly set flags.
func applyFlags(c *cli.Command, cfg *filesniff.Config) {
	if c.IsSet("format") {
		cfg.OutputFormat = outputFormat
	}
	if yamlOutput {
		cfg.OutputFormat = string(filesniff.FormatYAML)
	}
	if c.IsSet("cache-dir") {
		cfg.CacheDir = cacheDir
	}
	if c.IsSet("conf") {
		cfg.OrderFile = confPath
	}
	if c.IsSet("tidy") {
		cfg.FullRead = tidy
	}
	if c.IsSet("no-decompress") {
		cfg.NoDecompress = noDecompress
	}
	if c.IsSet("num-records") {
		cfg.RecordBudget = int(numRecords)
		cfg.FullRead = false
	}
	if c.IsSet("keep-going") {
		cfg.KeepGoing = keepGoing
	}
	if len(skip) > 0 {
		cfg.Skip = strings.Join(append(cfg.SkipPatterns(), skip...), ",")
	}
	switch {
	case verbose:
		cfg.LogLevel = "debug"
	case quiet:
		cfg.LogLevel = "error"
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = logFormat
	}
}
