package main

/*
  bio-sv-evidence extracts split-read and discordant-pair evidence from a
  BAM or SAM file. For more information, see
  github.com/grailbio/svevidence/svevidence/doc.go

  Usage: bio-sv-evidence -splitted split.bam -discordant disc.bam input.bam

  Paths may be local or s3://bucket/key.
*/

import (
	"context"
	"flag"
	"runtime"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/svevidence/encoding/bamprovider"
	"github.com/grailbio/svevidence/encoding/bamsink"
	"github.com/grailbio/svevidence/svevidence"
	"github.com/klauspost/compress/gzip"
)

var (
	splitPath        = flag.String("splitted", "", "Output path for split reads. Written as SAM if the path ends with .sam, else BAM")
	discordantPath   = flag.String("discordant", "", "Output path for discordant pairs. Written as SAM if the path ends with .sam, else BAM")
	splitNumber      = flag.Int("split-number", svevidence.DefaultOpts.MaxSupplementary, "max number of supplementary alignments of a split read")
	includeDup       = flag.Bool("include-dup", false, "include duplicates")
	minNonOverlap    = flag.Int("min-nonoverlap", svevidence.DefaultOpts.MinNonOverlap, "minimum non-overlap, in query bases, between split alignments")
	metricsPath      = flag.String("metrics", "", "If nonempty, write per-run counts to this TSV file")
	parallelism      = flag.Int("parallelism", runtime.NumCPU(), "Number of BGZF (de)compression goroutines per file")
	compressionLevel = flag.Int("compression", gzip.DefaultCompression, "gzip compression level of BAM outputs")
)

type extractOpts struct {
	input            string
	split            string
	discordant       string
	metrics          string
	parallelism      int
	compressionLevel int
	svevidence.Opts
}

func extract(ctx context.Context, opts extractOpts) (err error) {
	provider := bamprovider.NewProvider(opts.input, bamprovider.ProviderOpts{Parallelism: opts.parallelism})
	defer func() {
		if e := provider.Close(); e != nil && err == nil {
			err = e
		}
	}()
	header, err := provider.GetHeader()
	if err != nil {
		return errors.E(err, "read header", opts.input)
	}
	sinkOpts := bamsink.Opts{CompressionLevel: opts.compressionLevel, Parallelism: opts.parallelism}
	split, err := bamsink.Create(ctx, opts.split, header, sinkOpts)
	if err != nil {
		return err
	}
	defer func() {
		if e := split.Close(); e != nil && err == nil {
			err = e
		}
	}()
	discordant, err := bamsink.Create(ctx, opts.discordant, header, sinkOpts)
	if err != nil {
		return err
	}
	defer func() {
		if e := discordant.Close(); e != nil && err == nil {
			err = e
		}
	}()

	splitSum := bamsink.NewChecksumSink(split)
	discordantSum := bamsink.NewChecksumSink(discordant)
	metrics, err := svevidence.Extract(ctx, provider, splitSum, discordantSum, opts.Opts)
	if err != nil {
		return errors.E(err, opts.input)
	}
	metrics.SplitChecksum = splitSum.Checksum().Sum
	metrics.DiscordantChecksum = discordantSum.Checksum().Sum
	if opts.metrics != "" {
		return metrics.Write(ctx, opts.metrics)
	}
	return nil
}

func main() {
	shutdown := grail.Init()
	defer shutdown()
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})

	// Validate parameters.
	if flag.NArg() != 1 {
		log.Fatalf("expect exactly one input path, found '%s'", strings.Join(flag.Args(), " "))
	}
	if *splitPath == "" || *discordantPath == "" {
		log.Fatalf("both -splitted and -discordant must be set")
	}

	opts := extractOpts{
		input:            flag.Arg(0),
		split:            *splitPath,
		discordant:       *discordantPath,
		metrics:          *metricsPath,
		parallelism:      *parallelism,
		compressionLevel: *compressionLevel,
		Opts:             svevidence.DefaultOpts,
	}
	opts.MaxSupplementary = *splitNumber
	opts.IncludeDuplicates = *includeDup
	opts.MinNonOverlap = *minNonOverlap

	ctx := vcontext.Background()
	if err := extract(ctx, opts); err != nil {
		log.Fatalf(err.Error())
	}
	log.Debug.Printf("exiting")
}
