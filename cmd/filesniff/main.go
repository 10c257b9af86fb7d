package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/gobeaver/filesniff"
	"github.com/gobeaver/filesniff/internal/logger"
	"github.com/gobeaver/filesniff/source"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.Command{
		Name:      "filesniff",
		Usage:     "Detect the format of bioinformatics files",
		ArgsUsage: "FILE|URL|- ...",
		Version:   version,
		Flags:     append(sniffFlags(), loggingFlags()...),
		Action:    run,
	}

	if err := app.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *cli.Command) error {
	if err := checkFlags(c); err != nil {
		return err
	}
	cfg, err := filesniff.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(c, cfg)

	if dryRun {
		return printOrder(os.Stdout, cfg)
	}

	inputs := c.Args().Slice()
	if len(inputs) == 0 {
		return cli.ShowAppHelp(c)
	}

	format, err := filesniff.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}
	log := logger.ForFormat(cfg.LogFormat, os.Stderr, logger.ParseLevel(cfg.LogLevel))
	log.Info("filesniff started", "version", version)
	log.Debug("configuration", "inputs", inputs, "format", format, "num_records", cfg.RecordBudget, "tidy", cfg.FullRead)

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts = append(opts, filesniff.WithLogger(log))
	if slices.Contains(inputs, source.StdinName) {
		claim, err := source.ClaimStdin()
		if err != nil {
			return err
		}
		opts = append(opts, filesniff.WithStdin(claim))
	}

	classifier, err := filesniff.New(opts...)
	if err != nil {
		return err
	}
	results, err := classifier.ClassifyAll(ctx, inputs)
	if closeErr := classifier.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	return writeResults(results, format, log)
}

func printOrder(w io.Writer, cfg *filesniff.Config) error {
	order, err := filesniff.LoadOrder(cfg.OrderFile)
	if err != nil {
		return err
	}
	order.Skip = append(order.Skip, cfg.SkipPatterns()...)
	data, err := order.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func writeResults(results []*filesniff.Result, format filesniff.Format, log logger.Logger) error {
	if outputPath == "" {
		return filesniff.Encode(os.Stdout, results, format)
	}

	log.Info("writing the result", "path", outputPath)
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := filesniff.Encode(f, results, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
