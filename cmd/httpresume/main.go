package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nczempin/httpresume/client"
	"github.com/nczempin/httpresume/config"
	"github.com/nczempin/httpresume/resume"
	"github.com/nczempin/httpresume/sink"
	"github.com/nczempin/httpresume/transport"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// Exit codes
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitInvalidArgs   = 2
	ExitRequestFailed = 3
	ExitStorageError  = 5
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("httpresume", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: httpresume [options]

Downloads an http:// URL, resuming with Range requests whenever the server
closes the connection early, and stores the result in a file or bucket.

Options:`)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "YAML config file")
	url := fs.String("url", "", "URL to download (default "+config.DefaultURL+")")
	output := fs.String("output", "", "Output file (default "+sink.DefaultPath+")")
	bucket := fs.String("bucket", "", "Bucket URL to store into instead of a file (e.g. file:///tmp/out, s3://b)")
	object := fs.String("object", "", "Object key inside -bucket")
	transportKind := fs.String("transport", "", "Transport: tcp, unix, uring, uring2")
	socketPath := fs.String("socket-path", "", "Unix socket to dial with -transport unix (default: the URL authority)")
	maxAttempts := fs.Int("max-attempts", -1, "Stop after this many requests (0 = never)")
	verbose := fs.Bool("verbose", false, "Log every request")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.URL = *url
		case "output":
			cfg.Output = *output
		case "bucket":
			cfg.Bucket = *bucket
		case "object":
			cfg.Object = *object
		case "transport":
			cfg.Transport = transport.Kind(*transportKind)
		case "socket-path":
			cfg.SocketPath = *socketPath
		case "max-attempts":
			cfg.Retry.MaxAttempts = *maxAttempts
		case "verbose":
			cfg.Verbose = *verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return download(ctx, cfg, logger)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func download(ctx context.Context, cfg config.Config, logger *zap.Logger) int {
	factory, err := transport.NewFactory(cfg.Transport, cfg.TransportOptions())
	if err != nil {
		logger.Error("invalid transport", zap.Error(err))
		return ExitInvalidArgs
	}

	out, err := openSink(ctx, cfg)
	if err != nil {
		logger.Error("open output", zap.Error(err))
		return ExitStorageError
	}

	httpClient := client.NewHttpClient(client.Options{
		Transport: factory,
		Logger:    logger,
	})
	d := resume.NewDownloader(httpClient, resume.Options{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       cfg.Retry.Delay,
		Logger:      logger,
	})

	res, err := d.Download(ctx, cfg.URL)
	if err != nil {
		logger.Error("download failed", zap.Error(multierr.Append(err, out.Close())))
		return ExitRequestFailed
	}

	if err := multierr.Append(out.Store(ctx, res.Data), out.Close()); err != nil {
		logger.Error("store result", zap.Error(err))
		return ExitStorageError
	}

	logger.Info("download complete",
		zap.Int("bytes", len(res.Data)),
		zap.Int("attempts", res.Attempts),
	)
	return ExitSuccess
}

func openSink(ctx context.Context, cfg config.Config) (sink.Sink, error) {
	if cfg.Bucket != "" {
		s, err := sink.OpenBlobSink(ctx, cfg.Bucket, cfg.Object)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return sink.NewFileSink(cfg.Output), nil
}
