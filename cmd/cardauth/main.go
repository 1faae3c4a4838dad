// Command cardauth checks whether a Samsung memory card or USB flash drive
// is genuine.
//
// Usage:
//
//	cardauth -l            list removable disks
//	cardauth /dev/sdb      authenticate a disk
//	cardauth -simulate 176 authenticate an emulated card
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ardnew/cardauth/auth"
	"github.com/ardnew/cardauth/disk"
	"github.com/ardnew/cardauth/pkg"
	"github.com/ardnew/cardauth/pkg/config"
	"github.com/ardnew/cardauth/pkg/usbid"
)

// Exit codes.
const (
	exitSuccess     = 0
	exitFailed      = 1
	exitUsage       = -1
	exitFault       = -2
	exitUnsupported = -3
	exitNotFound    = -4
)

var version = "dev"

// newPlatform returns the host disk platform.
var newPlatform = disk.Default

// newUSBDatabase returns the USB ID database used to annotate listings.
var newUSBDatabase = usbid.New

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	list        bool
	lock        bool
	configPath  string
	verbose     bool
	logFormat   string
	simulate    string
	counterfeit bool
	version     bool
	id          string
	set         map[string]bool
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.list, "l", false, "List available disks")
	fs.BoolVar(&opts.list, "list", false, "List available disks")
	fs.BoolVar(&opts.lock, "lock", true, "Lock the disk for the duration of the session")
	fs.StringVar(&opts.configPath, "config", "", "Path to YAML configuration file")
	fs.BoolVar(&opts.verbose, "v", false, "Enable verbose logging")
	fs.StringVar(&opts.logFormat, "log-format", "", "Log format: text, json, or dev")
	fs.StringVar(&opts.simulate, "simulate", "", "Authenticate an emulated card with this controller type")
	fs.BoolVar(&opts.counterfeit, "counterfeit", false, "Make the emulated card answer with a wrong digest")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Samsung Memory Card/USB Flash Drive Authenticator\n\n")
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] [disk]\n\n", fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	switch fs.NArg() {
	case 0:
	case 1:
		opts.id = fs.Arg(0)
	default:
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args()[1:])
		fs.Usage()
		return nil, fmt.Errorf("%w: too many arguments", pkg.ErrInvalidParameter)
	}
	if opts.id == "" && !opts.list && !opts.version && opts.simulate == "" && opts.configPath == "" {
		fs.Usage()
		return nil, flag.ErrHelp
	}
	return opts, nil
}

// loadConfig reads, validates, and normalizes the configuration file, then
// applies the flags given on the command line.
func loadConfig(opts *options) (*config.Config, error) {
	cfg := &config.Config{}
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)

	if opts.set["lock"] {
		cfg.Lock = &opts.lock
	}
	if opts.set["log-format"] {
		cfg.Log.Format = opts.logFormat
	}
	if opts.verbose {
		cfg.Log.Level = slog.LevelDebug.String()
	}
	if opts.set["simulate"] {
		ct, err := strconv.ParseUint(opts.simulate, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: controller type %q", pkg.ErrInvalidParameter, opts.simulate)
		}
		cfg.Simulate = &config.SimulateConfig{Controller: uint8(ct), Counterfeit: opts.counterfeit}
	} else if cfg.Simulate != nil && opts.set["counterfeit"] {
		cfg.Simulate.Counterfeit = opts.counterfeit
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config, stderr io.Writer) error {
	level, err := pkg.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	format, err := pkg.ParseLogFormat(cfg.Log.Format)
	if err != nil {
		return err
	}
	pkg.SetLogLevel(level)
	pkg.SetLogger(pkg.NewFormatLogger(stderr, format))
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return exitUsage
	}
	if opts.version {
		fmt.Fprintf(stdout, "cardauth %s\n", version)
		return exitSuccess
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return exitUsage
	}
	if err := setupLogging(cfg, stderr); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return exitUsage
	}

	reg, err := cfg.Registry()
	if err != nil {
		pkg.LogError(pkg.ComponentCLI, "failed to build key table registry", "error", err)
		return exitFault
	}

	var platform disk.Platform
	if cfg.Simulate != nil {
		platform, err = newSimPlatform(reg, cfg.Simulate)
	} else {
		platform, err = newPlatform()
	}
	if err != nil {
		if errors.Is(err, pkg.ErrUnsupportedPlatform) {
			fmt.Fprintln(stderr, "Current platform is not supported.")
			return exitUnsupported
		}
		fmt.Fprintf(stderr, "Failed to authenticate: %v\n", err)
		return exitFault
	}

	if opts.list {
		return listVolumes(platform, stdout, stderr)
	}

	id := opts.id
	if id == "" {
		sim, ok := platform.(*simPlatform)
		if !ok {
			fmt.Fprintln(stderr, "No disk specified.")
			return exitUsage
		}
		id = sim.card.Name()
	}
	return authenticate(platform, reg, id, *cfg.Lock, stdout, stderr)
}

func listVolumes(platform disk.Platform, stdout, stderr io.Writer) int {
	vols, err := platform.Volumes()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to list disks: %v\n", err)
		return exitFault
	}

	db := newUSBDatabase()
	for _, v := range vols {
		fmt.Fprintln(stdout, v.ID)

		attrs := []any{"id", v.ID, "name", v.Name, "size", v.Size}
		if v.Vendor != "" {
			attrs = append(attrs, "vendor", v.Vendor)
		}
		if v.Model != "" {
			attrs = append(attrs, "model", v.Model)
		}
		if v.VendorID != 0 {
			attrs = append(attrs, "usb", db.Describe(v.VendorID, v.ProductID))
		}
		pkg.LogInfo(pkg.ComponentCLI, "volume", attrs...)
	}
	return exitSuccess
}

func authenticate(platform disk.Platform, reg *auth.Registry, id string, lock bool, stdout, stderr io.Writer) int {
	_, found, err := disk.Find(platform, id)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to authenticate: %v\n", err)
		return exitFault
	}
	if !found {
		fmt.Fprintln(stderr, "Could not find specified device in available disks.")
		return exitNotFound
	}

	d, err := platform.Open(id)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to authenticate: %v\n", err)
		return exitFault
	}
	defer func() {
		if err := d.Close(); err != nil {
			pkg.LogWarn(pkg.ComponentCLI, "close failed", "disk", id, "error", err)
		}
	}()

	a := auth.New(d)
	a.SetRegistry(reg)
	result, err := a.Authenticate(lock)
	if err != nil {
		pkg.LogError(pkg.ComponentCLI, "authentication fault", "disk", id, "error", err)
		fmt.Fprintf(stderr, "Failed to authenticate: %v\n", err)
		return exitFault
	}

	fmt.Fprintf(stdout, "Authentication result: %s\n", result)
	if result != auth.Successful {
		return exitFailed
	}
	return exitSuccess
}
