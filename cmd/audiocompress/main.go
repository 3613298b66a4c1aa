// SPDX-License-Identifier: EPL-2.0

// Command audiocompress converts one audio file to mono 32 kbps MP3.
//
//	audiocompress [-o out.mp3] [-rate 44100] [-stream] [-log-level info] <input>
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	compress "github.com/muhammadfauzanis/compressing-image-audio"
	"github.com/muhammadfauzanis/compressing-image-audio/encoder"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/logging"
)

// exit codes
const (
	exitOK = iota
	exitFailure
	exitUsage
)

type options struct {
	input    string
	output   string
	rate     int
	stream   bool
	logLevel string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "audiocompress: %v\n", err)
		return exitUsage
	}

	log, err := logging.New(stderr, opts.logLevel, "console")
	if err != nil {
		fmt.Fprintf(stderr, "audiocompress: %v\n", err)
		return exitUsage
	}

	start := time.Now()
	out, format, err := compressFile(opts, log)
	if err != nil {
		log.Error().Err(err).Str("input", opts.input).Msg("compression failed")
		return exitFailure
	}

	if err := writeOutput(opts.output, out, stdout); err != nil {
		log.Error().Err(err).Str("output", opts.output).Msg("writing output")
		return exitFailure
	}

	log.Info().
		Str("input", opts.input).
		Str("format", format).
		Str("output", opts.output).
		Int("bytes", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("compressed")

	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("audiocompress", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.output, "o", compress.OutputFilename, `output file, "-" for stdout`)
	fs.IntVar(&opts.rate, "rate", compress.DefaultContextSampleRate, "sample rate to resample to before encoding, 0 keeps the input rate")
	fs.BoolVar(&opts.stream, "stream", false, "encode while decoding instead of decoding the whole file first")
	fs.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: audiocompress [flags] <input>\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, errors.New("exactly one input file is required")
	}
	if opts.rate < 0 {
		return opts, fmt.Errorf("-rate %d must not be negative", opts.rate)
	}

	opts.input = fs.Arg(0)

	return opts, nil
}

// compressFile sniffs the input and, when that fails, retries with the
// format named by its extension.
func compressFile(opts options, log zerolog.Logger) ([]byte, string, error) {
	f, err := os.Open(opts.input)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	header := make([]byte, compress.SniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", err
	}

	decodeOpts := compress.DecodeOptions{SampleRate: opts.rate}
	format, ok := compress.Sniff(header[:n])
	if !ok {
		format = compress.FormatFromFilename(opts.input)
		decodeOpts.Format = format
	}

	pipeline := encoder.New(encoder.WithLogger(log))

	if opts.stream {
		src, used, err := compress.Open(f, decodeOpts)
		if err != nil {
			return nil, format, err
		}
		defer src.Close()

		out, err := pipeline.EncodeSource(src)
		return out, used, err
	}

	buf, err := compress.Decode(f, decodeOpts)
	if err != nil {
		return nil, format, err
	}

	log.Debug().
		Str("format", format).
		Int("channels", buf.NumChannels()).
		Int("sample_rate", buf.SampleRate).
		Dur("duration", buf.Duration()).
		Msg("decoded")

	out, err := pipeline.Encode(buf)
	return out, format, err
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
