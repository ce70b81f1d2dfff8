package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/autopilot/internal/config"
	"github.com/san-kum/autopilot/internal/throttle"
)

func throttleCommand() *cobra.Command {
	throttleCmd := &cobra.Command{
		Use:   "throttle",
		Short: "pedal mixer tools",
	}

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "evaluate the mixer on raw ADC readings",
		Args:  cobra.NoArgs,
		RunE:  calibrateThrottle,
	}
	calibrateCmd.Flags().IntVar(&fwdRaw, "fwd", 0, "raw forward reading (0-1023)")
	calibrateCmd.Flags().IntVar(&revRaw, "rev", 0, "raw reverse reading (0-1023)")
	calibrateCmd.Flags().IntVar(&regenRaw, "regen", 0, "raw regen reading (0-1023)")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "follow calibration output from a serial port",
		Args:  cobra.NoArgs,
		RunE:  monitorThrottle,
	}
	monitorCmd.Flags().StringVar(&port, "port", "", "serial device (e.g. /dev/ttyACM0)")
	monitorCmd.Flags().IntVar(&baud, "baud", throttle.DefaultBaud, "baud rate")

	portsCmd := &cobra.Command{
		Use:   "ports",
		Short: "list serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := throttle.ListPorts()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				fmt.Println("no serial ports found")
			}
			for _, p := range ports {
				fmt.Println(p)
			}
			return nil
		},
	}

	throttleCmd.AddCommand(calibrateCmd, monitorCmd, portsCmd)
	return throttleCmd
}

func throttleConfig(cmd *cobra.Command) (config.ThrottleConfig, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return config.ThrottleConfig{}, err
	}
	return cfg.Throttle, nil
}

func calibrateThrottle(cmd *cobra.Command, args []string) error {
	tc, err := throttleConfig(cmd)
	if err != nil {
		return err
	}

	mixer := throttle.NewMixer()
	if err := mixer.Validate(); err != nil {
		return err
	}

	in := throttle.ReadInputs(fwdRaw, revRaw, regenRaw, tc.Deadband)
	fmt.Println(throttle.Calibrate(mixer, in))

	out := mixer.Step(in)
	if err := mixer.Err(); err != nil {
		return err
	}
	fmt.Printf("%s throttle_dac=%d regen_dac=%d reverse_pin=%v\n",
		out, out.ThrottleCode(), out.RegenCode(), out.ReversePin(mixer.InvertReverse))
	return nil
}

func monitorThrottle(cmd *cobra.Command, args []string) error {
	tc, err := throttleConfig(cmd)
	if err != nil {
		return err
	}

	name := port
	if name == "" {
		name = tc.Port
	}
	if name == "" {
		return fmt.Errorf("no serial port given (see: autopilot throttle ports)")
	}
	rate := baud
	if !cmd.Flags().Changed("baud") && tc.Baud > 0 {
		rate = tc.Baud
	}

	mixer := throttle.NewMixer()
	logger.Info("monitoring", "port", name, "baud", rate)

	stats, err := throttle.MonitorPort(cmd.Context(), name, rate, func(c throttle.Calibration) error {
		mixer.Reset()
		out := mixer.Step(c.Inputs())
		fmt.Printf("%s | %s\n", c, out)
		return nil
	})
	logger.Info("monitor stopped", "lines", stats.Lines, "malformed", stats.Malformed)

	if cmd.Context().Err() != nil {
		return nil
	}
	return err
}
