package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/envble/internal/actuator"
	"github.com/srg/envble/internal/sensor"
	"github.com/srg/envble/internal/stackfactory"
	"github.com/srg/envble/pkg/config"
	"github.com/srg/envble/pkg/peripheral"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Environmental Sensing peripheral",
	Long: `Runs the peripheral until interrupted:

- Enables the radio, registers the Environmental Sensing service, and advertises
- Samples the sensor every sample period and updates characteristic values
- Notifies and optionally indicates subscribed centrals on schedule
- Polls the command characteristic and blinks the LED on request

Examples:
  # Serve with defaults against the Linux BLE controller
  envble serve

  # Development mode: in-memory stack, recorded blinks, fixed sensor seed
  envble serve --simulate --seed 1

  # Custom cadence: sample at 500ms, notify every 4th sample with indications
  envble serve --sample-period 500ms --notify-every 4 --indicate`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveConfigPath string
	serveName       string
	serveBackend    string
	serveSamplePer  time.Duration
	serveNotifyEv   int
	serveIndicate   bool
	serveLEDPath    string
	serveSimulate   bool
	serveSeed       int64
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Config file path (default: ~/.config/envble/config.yaml if present)")
	serveCmd.Flags().StringVar(&serveName, "name", "", "Advertised device name")
	serveCmd.Flags().StringVar(&serveBackend, "backend", "", "Radio stack backend: goble or mem")
	serveCmd.Flags().DurationVar(&serveSamplePer, "sample-period", 0, "Sensor sampling period")
	serveCmd.Flags().IntVar(&serveNotifyEv, "notify-every", 0, "Notify subscribers on every Nth sample")
	serveCmd.Flags().BoolVar(&serveIndicate, "indicate", false, "Also send indications on notify samples")
	serveCmd.Flags().StringVar(&serveLEDPath, "led", "", "LED sysfs brightness path")
	serveCmd.Flags().BoolVar(&serveSimulate, "simulate", false, "No hardware: in-memory stack, recorded blinks")
	serveCmd.Flags().Int64Var(&serveSeed, "seed", 0, "Sensor simulation seed (0 = time-based)")
}

// loadServeConfig resolves the effective configuration from the config file
// and flag overrides. Flags win over the file; the file wins over defaults.
func loadServeConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error

	switch {
	case serveConfigPath != "":
		cfg, err = config.Load(serveConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	default:
		path := config.DefaultPath()
		if _, statErr := os.Stat(path); statErr == nil {
			cfg, err = config.Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		} else {
			cfg = config.Default()
		}
	}

	if serveName != "" {
		cfg.Name = serveName
	}
	if serveBackend != "" {
		cfg.Backend = serveBackend
	}
	if serveSamplePer > 0 {
		cfg.SamplePeriod = serveSamplePer
	}
	if serveNotifyEv > 0 {
		cfg.NotifyEvery = serveNotifyEv
	}
	if cmd.Flags().Changed("indicate") {
		cfg.Indicate = serveIndicate
	}
	if serveLEDPath != "" {
		cfg.LEDPath = serveLEDPath
	}
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		cfg.LogLevel = flagLevel
	} else if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}

	// Simulation implies the in-memory stack unless a backend was named
	// explicitly.
	if serveSimulate && serveBackend == "" {
		cfg.Backend = stackfactory.BackendMem
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	logger := cfg.NewLogger()

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	stk, err := stackfactory.New(cfg.Backend, logger)
	if err != nil {
		return err
	}

	var blinker actuator.Blinker
	if serveSimulate {
		blinker = actuator.NewRecorder(logger)
	} else {
		blinker = actuator.NewLED(cfg.LEDPath, logger)
	}

	p := peripheral.New(stk, blinker, logger, &peripheral.Options{
		Name:              cfg.Name,
		AdvertiseInterval: cfg.AdvertiseInterval,
	})
	if err := p.Initialize(); err != nil {
		return fmt.Errorf("failed to start peripheral: %w", err)
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			logger.WithError(cerr).Warn("Shutdown did not complete cleanly")
		}
	}()

	seed := serveSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := sensor.NewSim(seed)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.WithFields(logrus.Fields{
		"name":    cfg.Name,
		"backend": cfg.Backend,
		"period":  cfg.SamplePeriod,
	}).Info("Peripheral is up and advertising")

	status := NewStatusLine()
	defer status.Stop()

	err = serveLoop(ctx, p, src, cfg, status, logger)

	status.Stop()
	drainEventLog(p, logger)
	return err
}

// serveLoop samples, publishes, and polls the command channel until the
// context is cancelled. A cancelled context is a normal shutdown.
func serveLoop(ctx context.Context, p *peripheral.Peripheral, src sensor.Source, cfg *config.Config, status *StatusLine, logger *logrus.Logger) error {
	ticker := time.NewTicker(cfg.SamplePeriod)
	defer ticker.Stop()

	samples := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down")
			return nil
		case <-ticker.C:
		}

		reading, err := src.Read()
		if err != nil {
			logger.WithError(err).Warn("Sensor read failed, skipping sample")
			continue
		}
		samples++

		notify := samples%cfg.NotifyEvery == 0
		indicate := notify && cfg.Indicate
		if err := p.Publish(reading.Temperature, reading.Pressure, reading.Humidity, notify, indicate); err != nil {
			return err
		}

		if err := p.PollCommand(); err != nil {
			logger.WithError(err).Warn("Command poll failed")
		}

		status.Update(cfg.Name, reading, p.ConnectionCount(), samples)
	}
}

// drainEventLog dumps the captured stack events for post-run diagnostics.
func drainEventLog(p *peripheral.Peripheral, logger *logrus.Logger) {
	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	for _, ev := range p.Events().Drain() {
		logger.WithFields(logrus.Fields{
			"kind": ev.Kind.String(),
			"conn": ev.Conn,
		}).Debug("Captured stack event")
	}
	m := p.Events().Metrics()
	logger.WithFields(logrus.Fields{
		"recorded":    m.Recorded(),
		"overwritten": m.Overwritten(),
	}).Debug("Event capture stats")
}
