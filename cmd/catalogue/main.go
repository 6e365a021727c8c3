// Command catalogue answers the stat_requests of a network document in one batch:
// it reads the document, builds the catalogue and writes the JSON responses.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"catalogue.onebusaway.org/internal/catalogue"
	"catalogue.onebusaway.org/internal/ingest"
	"catalogue.onebusaway.org/internal/logging"
	"catalogue.onebusaway.org/internal/mapdata"
	"catalogue.onebusaway.org/internal/router"
	"catalogue.onebusaway.org/internal/stats"
	"catalogue.onebusaway.org/internal/transit"
)

func main() {
	var input, output, format string
	var verbose bool

	flag.StringVar(&input, "input", "-", "Network document to read, - for stdin")
	flag.StringVar(&output, "output", "-", "File to write responses to, - for stdout")
	flag.StringVar(&format, "format", "", "Input format (json|yaml); defaults to the input file extension")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	// Logs go to stderr so stdout carries only the responses.
	logger := logging.NewTextLogger(os.Stderr, level)
	slog.SetDefault(logger)

	in := os.Stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open input: %v\n", err)
			os.Exit(1)
		}
		defer logging.SafeCloseWithLogging(f, logger, "input_document")
		in = f
	}

	out := os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer logging.SafeCloseWithLogging(f, logger, "output_file")
		out = f
	}

	if err := run(in, out, parseFormat(format, input), logger); err != nil {
		logging.LogError(logger, "batch failed", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseFormat(flagValue, input string) ingest.Format {
	switch flagValue {
	case "yaml", "yml":
		return ingest.FormatYAML
	case "json":
		return ingest.FormatJSON
	default:
		return ingest.FormatForPath(input)
	}
}

// run builds the catalogue from the document on in and writes one response per
// stat request to out.
func run(in io.Reader, out io.Writer, format ingest.Format, logger *slog.Logger) error {
	doc, err := ingest.Decode(in, format)
	if err != nil {
		return err
	}

	store := catalogue.NewStore()
	if err := doc.Populate(store); err != nil {
		return fmt.Errorf("failed to populate network: %w", err)
	}

	manager, err := transit.InitManager(store, doc.Routing(router.DefaultSettings()))
	if err != nil {
		return err
	}

	processor := stats.NewProcessor(manager, doc.Render(mapdata.DefaultRenderSettings()), logger)
	return stats.Write(out, processor.Process(doc.StatRequests))
}
