// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package touchview renders the state of a 1D touch surface to the
// terminal (stdout) using ANSI color codes.
//
// Useful while you are waiting for your Trill sensor to come by mail, or
// to eyeball a sensor without attaching a real display.
package touchview // import "periph.io/x/touch/devices/touchview"

import (
	"bytes"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/periph/conn"
	"periph.io/x/touch/devices/trill"
)

// Dev draws a 1D touch surface as a strip of colored blocks on the
// console.
type Dev struct {
	w       io.Writer
	cells   []uint8
	posMax  uint16
	sizeMax uint16
	buf     bytes.Buffer
}

// New returns a Dev that displays at the console.
//
// l is the width of the strip in characters. posMax and sizeMax scale the
// touch coordinates; use DeviceType.PositionMax and DeviceType.SizeMax of
// the sensor being displayed.
func New(l int, posMax, sizeMax uint16) *Dev {
	return &Dev{
		w:       colorable.NewColorableStdout(),
		cells:   make([]uint8, l),
		posMax:  posMax,
		sizeMax: sizeMax,
	}
}

func (d *Dev) String() string {
	return "TouchView"
}

// Halt implements conn.Resource.
//
// It clears the strip so the terminal is not left corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Draw renders one frame of touches.
//
// Each touch lights the cell its location falls into; the cell brightness
// follows the touch size.
func (d *Dev) Draw(touches []trill.Touch) error {
	for i := range d.cells {
		d.cells[i] = 0
	}
	for _, t := range touches {
		x := int(t.Location) * len(d.cells) / (int(d.posMax) + 1)
		if x < 0 || x >= len(d.cells) {
			continue
		}
		v := int(t.Size) * 255 / int(d.sizeMax)
		if v > 255 {
			v = 255
		}
		if uint8(v) > d.cells[x] {
			d.cells[x] = uint8(v)
		}
	}
	return d.refresh()
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per
	// call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for _, v := range d.cells {
		_, _ = io.WriteString(&d.buf, ansi256.Default.Block(color.NRGBA{R: v / 4, G: v, B: v / 4, A: 255}))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ conn.Resource = &Dev{}
