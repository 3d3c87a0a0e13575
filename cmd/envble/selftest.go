package main

import (
	"bytes"
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/envble/internal/actuator"
	"github.com/srg/envble/internal/stack/memstack"
	"github.com/srg/envble/pkg/advertising"
	"github.com/srg/envble/pkg/peripheral"
)

// selftestCmd represents the selftest command
var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run an offline end-to-end check",
	Long: `Exercises the peripheral against the in-memory stack:

- Value encoding round-trips and truncation
- Advertising payload construction within the 31-byte limit
- Full lifecycle: advertise, connect, publish, blink command, disconnect

No Bluetooth hardware is required.`,
	Args: cobra.NoArgs,
	RunE: runSelftest,
}

type selftestCheck struct {
	name string
	run  func() error
}

func runSelftest(cmd *cobra.Command, _ []string) error {
	logger, err := configureLogger(cmd, "error")
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	checks := []selftestCheck{
		{"value encoding", checkEncoding},
		{"advertising payload", checkPayload},
		{"peripheral lifecycle", func() error { return checkLifecycle(logger) }},
	}

	failed := 0
	for _, c := range checks {
		if err := c.run(); err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s: %s\n", fail("FAIL"), c.name, err)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", pass("PASS"), c.name)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

func checkEncoding() error {
	cases := []struct {
		value float64
		want  []byte
	}{
		{20.0, []byte{0x14, 0x00, 0x00, 0x00}},
		{1013.0, []byte{0xF5, 0x03, 0x00, 0x00}},
		{-1.0, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{20.9, []byte{0x14, 0x00, 0x00, 0x00}}, // truncates toward zero
	}
	for _, c := range cases {
		got := peripheral.EncodeValue(c.value)
		if !bytes.Equal(got, c.want) {
			return fmt.Errorf("encode %v: got % X, want % X", c.value, got, c.want)
		}
		decoded, err := peripheral.DecodeValue(got)
		if err != nil {
			return fmt.Errorf("decode % X: %w", got, err)
		}
		if decoded != int32(c.value) {
			return fmt.Errorf("round-trip %v: got %v", c.value, decoded)
		}
	}
	return nil
}

func checkPayload() error {
	payload, err := advertising.Payload(advertising.Options{
		Name:       "envble",
		Services:   []uint16{peripheral.ServiceEnvironmentalSensing},
		Appearance: peripheral.AppearanceEnvironmentalSensor,
	})
	if err != nil {
		return err
	}
	if len(payload) == 0 || len(payload) > advertising.MaxPayloadSize {
		return fmt.Errorf("payload size %d out of range", len(payload))
	}
	return nil
}

func checkLifecycle(logger *logrus.Logger) error {
	stk := memstack.New()
	blinker := actuator.NewRecorder(logger)
	p := peripheral.New(stk, blinker, logger, nil)

	if err := p.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer func() { _ = p.Close() }()

	stk.SimulateConnect("central-0")
	if p.ConnectionCount() != 1 {
		return fmt.Errorf("expected 1 connection, got %d", p.ConnectionCount())
	}

	if err := p.Publish(21.5, 1013, 45, true, false); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if n := len(stk.Notifications()); n != 3 {
		return fmt.Errorf("expected 3 notifications, got %d", n)
	}

	if err := stk.SimulateCentralWrite(p.CommandHandle(), []byte(peripheral.CommandBlink)); err != nil {
		return fmt.Errorf("command write: %w", err)
	}
	if err := p.PollCommand(); err != nil {
		return fmt.Errorf("poll: %w", err)
	}
	if blinker.Count() != peripheral.BlinkRepeat {
		return fmt.Errorf("expected %d blinks, got %d", peripheral.BlinkRepeat, blinker.Count())
	}

	stk.SimulateDisconnect("central-0")
	if p.ConnectionCount() != 0 {
		return fmt.Errorf("expected 0 connections, got %d", p.ConnectionCount())
	}
	if !stk.Advertising() {
		return fmt.Errorf("expected re-advertising after disconnect")
	}
	return nil
}
