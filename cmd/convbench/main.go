// Command convbench times a 2-D convolution of a synthetic raster.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/rasterbench/internal/chrono"
	"github.com/banshee-data/rasterbench/internal/config"
	"github.com/banshee-data/rasterbench/internal/extrapolation"
	"github.com/banshee-data/rasterbench/internal/filter"
	"github.com/banshee-data/rasterbench/internal/monitoring"
	"github.com/banshee-data/rasterbench/internal/raster"
	"github.com/banshee-data/rasterbench/internal/resultsdb"
	"github.com/banshee-data/rasterbench/internal/timeutil"
	"github.com/banshee-data/rasterbench/internal/version"
)

var (
	imageSize   = flag.Int("image", config.DefaultImageSize, "Image width and height")
	kernelSize  = flag.Int("kernel", config.DefaultKernelSize, "Kernel width and height")
	extrapolate = flag.String("extrapolation", config.DefaultExtrapolation, "Boundary mode: constant, nearest, reflect, mirror or wrap")
	constant    = flag.Float64("cval", 0, "Value outside the image in constant mode")
	operation   = flag.String("op", config.DefaultOperation, "Filter operation: convolution or correlation")
	method      = flag.String("method", config.DefaultMethod, "Computation method: direct or fft")
	runs        = flag.Int("runs", config.DefaultRuns, "Number of timed repetitions")
	configFile  = flag.String("config", "", "JSON config file; explicitly set flags take precedence")
	dbPath      = flag.String("db", "", "SQLite file to record the run into")
	tsvPath     = flag.String("tsv", "", "Append a kernel/mode/ms row to this file for barplot")
	exportPath  = flag.String("export", "", "Write the runs stored in -db to this TSV file and exit")
	exportLimit = flag.Int("export-limit", 0, "Export only the most recent N runs (0 = all)")
	versionFlag = flag.Bool("version", false, "Print version and exit")
)

var errBadOptions = errors.New("invalid options")

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.String("convbench"))
		return
	}

	log.SetFlags(0)
	monitoring.SetOutput(os.Stdout, "")

	cfg, err := resolveConfig(*configFile, setFlags())
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *exportPath != "" {
		if err := exportRuns(cfg.GetDatabase(), *exportPath, *exportLimit); err != nil {
			log.Fatalf("export failed: %v", err)
		}
		return
	}

	run, err := benchmark(cfg, timeutil.RealClock{})
	if err != nil {
		log.Fatalf("benchmark failed: %v", err)
	}

	if err := record(cfg, run); err != nil {
		log.Fatalf("failed to record run: %v", err)
	}
}

// setFlags returns the command-line flags as a config, with only the flags
// the user explicitly set filled in.
func setFlags() *config.BenchConfig {
	cfg := config.EmptyBenchConfig()
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "image":
			cfg.ImageSize = imageSize
		case "kernel":
			cfg.KernelSize = kernelSize
		case "extrapolation":
			cfg.Extrapolation = extrapolate
		case "cval":
			cfg.Constant = constant
		case "op":
			cfg.Operation = operation
		case "method":
			cfg.Method = method
		case "runs":
			cfg.Runs = runs
		case "db":
			cfg.Database = dbPath
		case "tsv":
			cfg.TSV = tsvPath
		}
	})
	return cfg
}

// resolveConfig loads path, when given, and overlays the explicit flags.
func resolveConfig(path string, flags *config.BenchConfig) (*config.BenchConfig, error) {
	cfg := config.EmptyBenchConfig()
	if path != "" {
		loaded, err := config.LoadBenchConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = loaded
	}
	cfg.Merge(flags)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadOptions, err)
	}
	return cfg, nil
}

// benchmark generates the raster and kernel, filters the raster in place
// the configured number of times and reports the timings.
func benchmark(cfg *config.BenchConfig, clock timeutil.Clock) (resultsdb.Run, error) {
	mode, err := extrapolation.Parse(cfg.GetExtrapolation())
	if err != nil {
		return resultsdb.Run{}, err
	}
	op, err := filter.ParseOp(cfg.GetOperation())
	if err != nil {
		return resultsdb.Run{}, err
	}
	m, err := filter.ParseMethod(cfg.GetMethod())
	if err != nil {
		return resultsdb.Run{}, err
	}

	monitoring.Logf("Generating raster and kernel...")
	input, err := raster.Range(cfg.GetImageSize(), cfg.GetImageSize())
	if err != nil {
		return resultsdb.Run{}, fmt.Errorf("failed to generate image: %w", err)
	}
	values, err := raster.Range(cfg.GetKernelSize(), cfg.GetKernelSize())
	if err != nil {
		return resultsdb.Run{}, fmt.Errorf("failed to generate kernel: %w", err)
	}
	kernel := filter.New(values, op).WithMethod(m)
	monitoring.Logf("  input: %s", input)

	monitoring.Logf("Filtering...")
	timer := chrono.New(clock)
	var img *raster.Raster
	for i := 0; i < cfg.GetRuns(); i++ {
		img = input.Clone()
		timer.Start()
		err := kernel.ApplyInPlace(img, mode, cfg.GetConstant())
		timer.Stop()
		if err != nil {
			return resultsdb.Run{}, fmt.Errorf("run %d: %w", i+1, err)
		}
	}
	monitoring.Logf("  output: %s", img)

	s := timer.Summarize()
	monitoring.Logf("  Done in: %.3f ms", s.Mean)
	if s.Count > 1 {
		monitoring.Logf("  over %d runs: min %.3f ms, max %.3f ms, stddev %.3f ms", s.Count, s.Min, s.Max, s.StdDev)
	}

	return resultsdb.Run{
		ImageSize:     cfg.GetImageSize(),
		KernelSize:    cfg.GetKernelSize(),
		Extrapolation: mode.String(),
		Op:            op.String(),
		Method:        m.String(),
		Repetitions:   s.Count,
		MeanMs:        s.Mean,
		StdDevMs:      s.StdDev,
		MinMs:         s.Min,
		MaxMs:         s.Max,
		CreatedAt:     clock.Now(),
	}, nil
}

// record writes run to the configured database and TSV file, if any.
func record(cfg *config.BenchConfig, run resultsdb.Run) error {
	if path := cfg.GetDatabase(); path != "" {
		db, err := resultsdb.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()
		stored, err := db.RecordRun(run)
		if err != nil {
			return err
		}
		monitoring.Logf("Recorded run %s in %s", stored.ID, path)
	}

	if path := cfg.GetTSV(); path != "" {
		if err := appendTSV(path, run); err != nil {
			return err
		}
		monitoring.Logf("Appended run to %s", path)
	}
	return nil
}

// exportRuns writes the most recent limit runs of the database at dbPath to
// out as a table barplot can draw.
func exportRuns(dbPath, out string, limit int) error {
	if dbPath == "" {
		return fmt.Errorf("%w: -export needs -db", errBadOptions)
	}
	db, err := resultsdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	version, _, err := db.MigrateVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	runs, err := db.ListRuns(limit)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := resultsdb.WriteTSV(f, runs); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	monitoring.Logf("Exported %d runs from %s (schema v%d) to %s", len(runs), dbPath, version, out)
	return nil
}

// appendTSV adds run to the table at path, writing the header first when
// the file is new or empty.
func appendTSV(path string, run resultsdb.Run) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return resultsdb.WriteTSV(f, []resultsdb.Run{run})
	}
	_, err = io.WriteString(f, resultsdb.TSVRow(run)+"\n")
	return err
}
