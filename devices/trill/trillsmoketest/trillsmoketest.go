// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package trillsmoketest is leveraged by touch-smoketest to verify that a
// Trill sensor is working as expected.
package trillsmoketest

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/touch/devices/trill"
)

// SmokeTest is imported by touch-smoketest.
type SmokeTest struct {
}

// Name implements the SmokeTest interface.
func (s *SmokeTest) Name() string {
	return "trill"
}

// Description implements the SmokeTest interface.
func (s *SmokeTest) Description() string {
	return "Tests a Trill touch sensor"
}

// Run implements the SmokeTest interface.
func (s *SmokeTest) Run(f *flag.FlagSet, args []string) error {
	busName := f.String("bus", "", "I²C bus to use")
	addr := f.Uint("addr", 0, "I²C address, 0 for the type's default")
	devType := f.String("type", "bar", "device type: bar, square, craft, ring, hex or flex")
	if err := f.Parse(args); err != nil {
		return err
	}
	if f.NArg() != 0 {
		f.Usage()
		return errors.New("unrecognized arguments")
	}
	t, err := ParseType(*devType)
	if err != nil {
		return err
	}

	b, err := i2creg.Open(*busName)
	if err != nil {
		return err
	}
	defer b.Close()
	d, err := trill.New(b, &trill.Opts{Type: t, Addr: uint16(*addr)})
	if err != nil {
		return err
	}
	fmt.Printf("%s: firmware v%d, %d channels\n", d, d.FirmwareVersion(), d.NumChannels())

	// One second of polling at the nominal 50ms rate.
	for i := 0; i < 20; i++ {
		if err := d.Read(); err != nil {
			return err
		}
		if n := d.TouchCount(); n > d.MaxTouches() {
			return fmt.Errorf("%d touches reported; the device supports %d", n, d.MaxTouches())
		}
		time.Sleep(50 * time.Millisecond)
	}
	fmt.Printf("read 20 frames without error\n")
	return nil
}

// ParseType converts a user supplied device type name.
func ParseType(s string) (trill.DeviceType, error) {
	switch s {
	case "bar":
		return trill.Bar, nil
	case "square":
		return trill.Square, nil
	case "craft":
		return trill.Craft, nil
	case "ring":
		return trill.Ring, nil
	case "hex":
		return trill.Hex, nil
	case "flex":
		return trill.Flex, nil
	default:
		return trill.Unknown, fmt.Errorf("unknown device type %q", s)
	}
}
