// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// trill-mqtt polls a Trill touch sensor and publishes each frame to an
// MQTT broker as JSON.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
	"periph.io/x/touch/devices/trill"
	"periph.io/x/touch/devices/trill/trillsmoketest"
)

// frame is the published payload.
type frame struct {
	Time    time.Time   `json:"time"`
	Device  string      `json:"device"`
	Touches []touchJSON `json:"touches"`
}

type touchJSON struct {
	Location uint16 `json:"location"`
	Size     uint16 `json:"size"`
}

func publishLoop(d *trill.Dev, c mqtt.Client, topic string, interval time.Duration, count int) error {
	for i := 0; count == 0 || i < count; i++ {
		if err := d.Read(); err != nil {
			return err
		}
		f := frame{Time: time.Now().UTC(), Device: d.String()}
		for _, t := range d.Touches() {
			f.Touches = append(f.Touches, touchJSON{Location: t.Location, Size: t.Size})
		}
		payload, err := json.Marshal(&f)
		if err != nil {
			return err
		}
		tok := c.Publish(topic, 0, false, payload)
		tok.Wait()
		if err := tok.Error(); err != nil {
			return err
		}
		log.Printf("published %d touch(es)", len(f.Touches))
		time.Sleep(interval)
	}
	return nil
}

func mainImpl() error {
	broker := flag.String("broker", "tcp://localhost:1883", "MQTT broker to publish to")
	clientID := flag.String("id", "trill-mqtt", "MQTT client ID")
	topic := flag.String("topic", "trill/touches", "MQTT topic to publish on")
	busName := flag.String("bus", "", "I²C bus to use")
	addr := flag.Uint("addr", 0, "I²C address, 0 for the type's default")
	devType := flag.String("type", "bar", "device type: bar, square, craft, ring, hex or flex")
	interval := flag.Duration("interval", 50*time.Millisecond, "polling interval")
	count := flag.Int("n", 0, "number of frames to publish; 0 means forever")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
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
	d, err := trill.New(b, &trill.Opts{Type: t, Addr: uint16(*addr)})
	if err != nil {
		return err
	}

	c := mqtt.NewClient(mqtt.NewClientOptions().AddBroker(*broker).SetClientID(*clientID))
	if tok := c.Connect(); tok.Wait() && tok.Error() != nil {
		return tok.Error()
	}
	defer c.Disconnect(250)
	fmt.Printf("%s -> %s %s\n", d, *broker, *topic)
	return publishLoop(d, c, *topic, *interval, *count)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "trill-mqtt: %s.\n", err)
		os.Exit(1)
	}
}
