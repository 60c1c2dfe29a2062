// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// trill polls a Trill touch sensor and prints the touches it sees.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
	"periph.io/x/touch/devices/touchview"
	"periph.io/x/touch/devices/trill"
	"periph.io/x/touch/devices/trill/trillsmoketest"
)

func printTouches(d *trill.Dev) {
	fmt.Printf("%d touch(es)\n", d.TouchCount())
	for i := 0; i < d.TouchCount(); i++ {
		t := d.TouchAt(i)
		fmt.Printf("  #%d: %d %d\n", i, t.Location, t.Size)
	}
	for i := 0; i < d.HorizontalTouchCount(); i++ {
		t := d.HorizontalTouchAt(i)
		fmt.Printf("  h#%d: %d %d\n", i, t.Location, t.Size)
	}
	for i := 0; i < d.NumButtons(); i++ {
		fmt.Printf("  button %d: %d\n", i, d.ButtonValue(i))
	}
}

func printRaw(w []uint16) {
	for i, v := range w {
		if i != 0 {
			fmt.Printf(" ")
		}
		fmt.Printf("%d", v)
	}
	fmt.Printf("\n")
}

func mainImpl() error {
	busName := flag.String("bus", "", "I²C bus to use")
	addr := flag.Uint("addr", 0, "I²C address, 0 for the type's default")
	devType := flag.String("type", "bar", "device type: bar, square, craft, ring, hex or flex")
	raw := flag.Bool("raw", false, "read per channel diff data instead of touches")
	view := flag.Bool("view", false, "render the touches as a strip in the terminal")
	interval := flag.Duration("interval", 50*time.Millisecond, "polling interval")
	count := flag.Int("n", 0, "number of frames to read; 0 means forever")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if *raw && *view {
		return errors.New("-raw and -view are mutually exclusive")
	}
	t, err := trillsmoketest.ParseType(*devType)
	if err != nil {
		return err
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	b, err := i2creg.Open(*busName)
	if err != nil {
		return err
	}
	defer b.Close()

	mode := trill.Centroid
	if *raw {
		mode = trill.Diff
	}
	d, err := trill.New(b, &trill.Opts{Type: t, Addr: uint16(*addr), Mode: mode})
	if err != nil {
		return err
	}
	fmt.Printf("%s: firmware v%d\n", d, d.FirmwareVersion())

	var strip *touchview.Dev
	if *view {
		strip = touchview.New(64, t.PositionMax(), t.SizeMax())
		defer strip.Halt()
	}
	for i := 0; *count == 0 || i < *count; i++ {
		switch {
		case *raw:
			w, err := d.ReadRaw()
			if err != nil {
				return err
			}
			printRaw(w)
		case *view:
			if err := d.Read(); err != nil {
				return err
			}
			if err := strip.Draw(d.Touches()); err != nil {
				return err
			}
		default:
			if err := d.Read(); err != nil {
				return err
			}
			printTouches(d)
		}
		time.Sleep(*interval)
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "trill: %s.\n", err)
		os.Exit(1)
	}
}
