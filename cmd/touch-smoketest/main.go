// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// touch-smoketest runs one of the hardware smoke tests in this repository
// against real sensors.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"periph.io/x/periph/host"
	"periph.io/x/touch/devices/trill/trillsmoketest"
)

// SmokeTest must be implemented by a smoke test.
type SmokeTest interface {
	// Name is the name of the smoke test, it is the identifier used on the
	// command line.
	Name() string
	// Description returns a short description to be printed to the user in
	// the help page.
	Description() string
	// Run runs the test and return an error in case of failure.
	Run(f *flag.FlagSet, args []string) error
}

var tests = []SmokeTest{
	&trillsmoketest.SmokeTest{},
}

func usage() {
	fmt.Printf("Usage: touch-smoketest [-v] <test> ...\n\n")
	fmt.Printf("Available tests:\n")
	for _, t := range tests {
		fmt.Printf("  %-8s %s\n", t.Name(), t.Description())
	}
}

func mainImpl() error {
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Usage = usage
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() == 0 {
		usage()
		return fmt.Errorf("no test specified")
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	name := flag.Arg(0)
	for _, t := range tests {
		if t.Name() == name {
			f := flag.NewFlagSet(name, flag.ExitOnError)
			return t.Run(f, flag.Args()[1:])
		}
	}
	usage()
	return fmt.Errorf("test %q not found", name)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "touch-smoketest: %s.\n", err)
		os.Exit(1)
	}
}
