// Command barplot draws a bar chart from a tab-separated table.
//
// Usage:
//
//	barplot [flags] input.tsv [output.{png,svg,pdf,html,...}]
//
// Two columns give a simple chart, three columns a grouped one. Without an
// output path the chart is served over HTTP until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/rasterbench/internal/barchart"
	"github.com/banshee-data/rasterbench/internal/fsutil"
	"github.com/banshee-data/rasterbench/internal/monitoring"
	"github.com/banshee-data/rasterbench/internal/table"
	"github.com/banshee-data/rasterbench/internal/version"
)

var (
	logScale    = flag.Bool("log", false, "Use a logarithmic y axis")
	showValues  = flag.Bool("values", false, "Label each bar with its value")
	listen      = flag.String("listen", "localhost:8050", "Listen address for interactive display")
	title       = flag.String("title", "", "Chart title (defaults to '<value> by <category>')")
	versionFlag = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] input [output]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.String("barplot"))
		return
	}

	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		flag.Usage()
		os.Exit(2)
	}
	input, output := args[0], ""
	if len(args) == 2 {
		output = args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := barchart.Options{Title: *title, Log: *logScale, Values: *showValues}
	if err := run(ctx, fsutil.OSFileSystem{}, os.Stdout, input, output, opts, *listen); err != nil {
		log.Fatalf("barplot: %v", err)
	}
}

// run loads input, prints it to stdout and then saves or serves the chart.
// Tables that are neither simple nor grouped, or that have no data rows,
// are reported and skipped.
func run(ctx context.Context, fsys fsutil.FileSystem, stdout io.Writer, input, output string, o barchart.Options, addr string) error {
	tbl, err := table.Load(fsys, input)
	if err != nil {
		return err
	}
	if err := tbl.Print(stdout); err != nil {
		return fmt.Errorf("print table: %w", err)
	}

	s, err := barchart.FromTable(tbl)
	if errors.Is(err, barchart.ErrUnsupportedLayout) || errors.Is(err, barchart.ErrNoRows) {
		monitoring.Logf("No chart drawn: %v", err)
		return nil
	}
	if err != nil {
		return err
	}

	if output != "" {
		if err := barchart.Save(fsys, s, o, output); err != nil {
			return err
		}
		monitoring.Logf("Saved %s chart to %s", tbl.Layout(), output)
		return nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return serve(ctx, ln, barchart.Handler(s, o))
}

// serve runs an HTTP server for h on ln until ctx is cancelled.
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	server := &http.Server{Handler: h}

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(ln)
	}()
	monitoring.Logf("Serving chart at http://%s/ (Ctrl-C to stop)", ln.Addr())

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}
	monitoring.Logf("HTTP server stopped")
	return nil
}
