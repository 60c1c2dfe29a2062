// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trill

import (
	"errors"
	"testing"

	"periph.io/x/periph/conn/i2c/i2ctest"
)

// initOps returns the bus transactions New issues for a device at addr
// that identifies as typ with firmware version 2, configured for mode.
func initOps(addr uint16, typ DeviceType, mode Mode) []i2ctest.IO {
	return []i2ctest.IO{
		// Identify.
		{Addr: addr, W: []byte{0x00, 0xff}},
		{Addr: addr, R: []byte{0x00, byte(typ), 0x02}},
		// Mode.
		{Addr: addr, W: []byte{0x00, 0x01, byte(mode)}},
		// Scan settings: speed 0, 12 bits.
		{Addr: addr, W: []byte{0x00, 0x02, 0x00, 0x0c}},
		// Baseline update.
		{Addr: addr, W: []byte{0x00, 0x06}},
	}
}

// frameOps returns the transactions of one data frame read.
func frameOps(addr uint16, frame []byte) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: addr, W: []byte{0x04}},
		{Addr: addr, R: frame},
	}
}

func TestNew(t *testing.T) {
	b := &i2ctest.Playback{Ops: initOps(0x20, Bar, Centroid)}
	defer b.Close()
	d, err := New(b, &Opts{Type: Bar})
	if err != nil {
		t.Fatal(err)
	}
	if v := d.FirmwareVersion(); v != 2 {
		t.Fatalf("firmware version %d", v)
	}
	if d.Type() != Bar || d.Mode() != Centroid {
		t.Fatalf("got %s in %s mode", d.Type(), d.Mode())
	}
	if d.Addr() != 0x20 {
		t.Fatalf("addr %#02x", d.Addr())
	}
	if s := d.String(); s == "" {
		t.Fatal("empty String()")
	}
	if !d.Is1D() || d.Is2D() {
		t.Fatal("Bar must be 1D")
	}
	if n := d.MaxTouches(); n != 5 {
		t.Fatalf("MaxTouches() = %d", n)
	}
	if n := d.NumChannels(); n != 26 {
		t.Fatalf("NumChannels() = %d", n)
	}
}

func TestNew_TypeMismatch(t *testing.T) {
	// Identifies as a Square while a Bar was expected.
	b := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x20, W: []byte{0x00, 0xff}},
			{Addr: 0x20, R: []byte{0x00, byte(Square), 0x02}},
		},
	}
	defer b.Close()
	if _, err := New(b, &Opts{Type: Bar}); err == nil {
		t.Fatal("expected type mismatch error")
	}
}

func TestNew_BadAddress(t *testing.T) {
	b := &i2ctest.Playback{}
	defer b.Close()
	if _, err := New(b, &Opts{Type: Bar, Addr: 0x38}); err == nil {
		t.Fatal("0x38 is out of the Bar address range")
	}
}

func TestNew_DefaultOpts(t *testing.T) {
	b := &i2ctest.Playback{Ops: initOps(0x20, Bar, Centroid)}
	defer b.Close()
	d, err := New(b, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Type() != Bar || d.Addr() != 0x20 {
		t.Fatalf("got %s at %#02x", d.Type(), d.Addr())
	}
}

func TestNew_NoType(t *testing.T) {
	b := &i2ctest.Playback{}
	defer b.Close()
	if _, err := New(b, &Opts{}); err == nil {
		t.Fatal("expected error for unspecified device type")
	}
}

func TestRead_NoTouch(t *testing.T) {
	frame := make([]byte, 20)
	for i := range frame {
		frame[i] = 0xff
	}
	ops := append(initOps(0x20, Bar, Centroid), frameOps(0x20, frame)...)
	b := &i2ctest.Playback{Ops: ops}
	defer b.Close()
	d, err := New(b, &Opts{Type: Bar})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Read(); err != nil {
		t.Fatal(err)
	}
	if n := d.TouchCount(); n != 0 {
		t.Fatalf("TouchCount() = %d, want 0", n)
	}
	for _, tc := range d.Touches() {
		t.Fatalf("unexpected touch %+v", tc)
	}
}

func TestRead_OneTouch(t *testing.T) {
	// Location 400, size 1024, then the 0xffff sentinel.
	frame := []byte{
		0x01, 0x90, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	ops := append(initOps(0x20, Bar, Centroid), frameOps(0x20, frame)...)
	b := &i2ctest.Playback{Ops: ops}
	defer b.Close()
	d, err := New(b, &Opts{Type: Bar})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Read(); err != nil {
		t.Fatal(err)
	}
	if n := d.TouchCount(); n != 1 {
		t.Fatalf("TouchCount() = %d, want 1", n)
	}
	if got := d.TouchAt(0); got != (Touch{Location: 400, Size: 1024}) {
		t.Fatalf("TouchAt(0) = %+v", got)
	}
	// Out of range access stays safe and returns the zero value.
	if got := d.TouchAt(1); got != (Touch{}) {
		t.Fatalf("TouchAt(1) = %+v, want zero", got)
	}
	if got := d.TouchAt(-1); got != (Touch{}) {
		t.Fatalf("TouchAt(-1) = %+v, want zero", got)
	}
	if n := d.HorizontalTouchCount(); n != 0 {
		t.Fatalf("HorizontalTouchCount() = %d on a 1D device", n)
	}
}

func TestRead_Square(t *testing.T) {
	// One vertical touch (100/200), two horizontal (300/10, 500/20).
	frame := []byte{
		0x00, 0x64, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, // v locations
		0x00, 0xc8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // v sizes
		0x01, 0x2c, 0x01, 0xf4, 0xff, 0xff, 0xff, 0xff, // h locations
		0x00, 0x0a, 0x00, 0x14, 0x00, 0x00, 0x00, 0x00, // h sizes
	}
	ops := append(initOps(0x28, Square, Centroid), frameOps(0x28, frame)...)
	b := &i2ctest.Playback{Ops: ops}
	defer b.Close()
	d, err := New(b, &Opts{Type: Square})
	if err != nil {
		t.Fatal(err)
	}
	if !d.Is2D() || d.MaxTouches() != 4 {
		t.Fatal("Square must be 2D with 4 touches per axis")
	}
	if err := d.Read(); err != nil {
		t.Fatal(err)
	}
	if n := d.TouchCount(); n != 1 {
		t.Fatalf("TouchCount() = %d, want 1", n)
	}
	if got := d.TouchAt(0); got != (Touch{Location: 100, Size: 200}) {
		t.Fatalf("TouchAt(0) = %+v", got)
	}
	if n := d.HorizontalTouchCount(); n != 2 {
		t.Fatalf("HorizontalTouchCount() = %d, want 2", n)
	}
	if got := d.HorizontalTouchAt(1); got != (Touch{Location: 500, Size: 20}) {
		t.Fatalf("HorizontalTouchAt(1) = %+v", got)
	}
	if got := d.HorizontalTouchAt(2); got != (Touch{}) {
		t.Fatalf("HorizontalTouchAt(2) = %+v, want zero", got)
	}
	if got := d.HorizontalTouches(); len(got) != 2 {
		t.Fatalf("HorizontalTouches() = %+v", got)
	}
}

func TestRead_RingButtons(t *testing.T) {
	// One touch then the sentinel; button words 10 and 20 trail the sizes.
	frame := []byte{
		0x00, 0x64, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0x00, 0xc8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x0a, 0x00, 0x14,
	}
	ops := append(initOps(0x38, Ring, Centroid), frameOps(0x38, frame)...)
	b := &i2ctest.Playback{Ops: ops}
	defer b.Close()
	d, err := New(b, &Opts{Type: Ring})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Read(); err != nil {
		t.Fatal(err)
	}
	if n := d.NumButtons(); n != 2 {
		t.Fatalf("NumButtons() = %d, want 2", n)
	}
	if v := d.ButtonValue(0); v != 10 {
		t.Fatalf("ButtonValue(0) = %d, want 10", v)
	}
	if v := d.ButtonValue(1); v != 20 {
		t.Fatalf("ButtonValue(1) = %d, want 20", v)
	}
	if v := d.ButtonValue(2); v != 0 {
		t.Fatalf("ButtonValue(2) = %d, want 0", v)
	}
	if n := d.TouchCount(); n != 1 {
		t.Fatalf("TouchCount() = %d, want 1", n)
	}
}

func TestRead_TransportError(t *testing.T) {
	frame := []byte{
		0x01, 0x90, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	// Only one full frame is played back; the second Read hits the end of
	// the script and fails at the bus level.
	ops := append(initOps(0x20, Bar, Centroid), frameOps(0x20, frame)...)
	b := &i2ctest.Playback{Ops: ops, DontPanic: true}
	d, err := New(b, &Opts{Type: Bar})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Read(); err != nil {
		t.Fatal(err)
	}
	err = d.Read()
	if err == nil {
		t.Fatal("expected a transport error")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error %v is not a *TransportError", err)
	}
	// The previous frame must survive the failure.
	if n := d.TouchCount(); n != 1 {
		t.Fatalf("TouchCount() = %d after failed Read, want 1", n)
	}
	if got := d.TouchAt(0); got != (Touch{Location: 400, Size: 1024}) {
		t.Fatalf("TouchAt(0) = %+v after failed Read", got)
	}
}

func TestRead_WrongMode(t *testing.T) {
	b := &i2ctest.Playback{Ops: initOps(0x30, Craft, Diff)}
	defer b.Close()
	d, err := New(b, &Opts{Type: Craft, Mode: Diff})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Read(); err == nil {
		t.Fatal("Read must fail outside centroid mode")
	}
	if d.Is1D() {
		t.Fatal("Is1D() must be false outside centroid mode")
	}
	if n := d.MaxTouches(); n != 0 {
		t.Fatalf("MaxTouches() = %d outside centroid mode", n)
	}
}

func TestReadRaw(t *testing.T) {
	frame := make([]byte, 52)
	frame[0] = 0x01 // channel 0 = 0x0102
	frame[1] = 0x02
	frame[50] = 0x00 // channel 25 = 3
	frame[51] = 0x03
	ops := append(initOps(0x20, Bar, Diff), frameOps(0x20, frame)...)
	b := &i2ctest.Playback{Ops: ops}
	defer b.Close()
	d, err := New(b, &Opts{Type: Bar, Mode: Diff})
	if err != nil {
		t.Fatal(err)
	}
	w, err := d.ReadRaw()
	if err != nil {
		t.Fatal(err)
	}
	if len(w) != d.NumChannels() {
		t.Fatalf("got %d words, want %d", len(w), d.NumChannels())
	}
	if w[0] != 0x0102 || w[25] != 3 {
		t.Fatalf("decoded words %v", w)
	}
}

func TestReadRaw_WrongMode(t *testing.T) {
	b := &i2ctest.Playback{Ops: initOps(0x20, Bar, Centroid)}
	defer b.Close()
	d, err := New(b, &Opts{Type: Bar})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.ReadRaw(); err == nil {
		t.Fatal("ReadRaw must fail in centroid mode")
	}
}

func TestConfigCommands(t *testing.T) {
	addr := uint16(0x20)
	ops := append(initOps(addr, Bar, Centroid), []i2ctest.IO{
		// Scan settings are clamped to speed 3, 16 bits.
		{Addr: addr, W: []byte{0x00, 0x02, 0x03, 0x10}},
		// Prescaler clamped to 8.
		{Addr: addr, W: []byte{0x00, 0x03, 0x08}},
		// Noise threshold clamped to 255 then 0.
		{Addr: addr, W: []byte{0x00, 0x04, 0xff}},
		{Addr: addr, W: []byte{0x00, 0x04, 0x00}},
		{Addr: addr, W: []byte{0x00, 0x05, 0x2a}},
		{Addr: addr, W: []byte{0x00, 0x07, 0x12, 0x34}},
		{Addr: addr, W: []byte{0x00, 0x10, 0x01, 0x02}},
		{Addr: addr, W: []byte{0x00, 0x06}},
	}...)
	b := &i2ctest.Playback{Ops: ops}
	defer b.Close()
	d, err := New(b, &Opts{Type: Bar})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetScanSettings(9, 20); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPrescaler(12); err != nil {
		t.Fatal(err)
	}
	if err := d.SetNoiseThreshold(300); err != nil {
		t.Fatal(err)
	}
	if err := d.SetNoiseThreshold(-4); err != nil {
		t.Fatal(err)
	}
	if err := d.SetIDAC(42); err != nil {
		t.Fatal(err)
	}
	if err := d.SetMinimumTouchSize(0x1234); err != nil {
		t.Fatal(err)
	}
	if err := d.SetAutoScanInterval(0x0102); err != nil {
		t.Fatal(err)
	}
	if err := d.UpdateBaseline(); err != nil {
		t.Fatal(err)
	}
}

func TestSetMode_Invalid(t *testing.T) {
	b := &i2ctest.Playback{Ops: initOps(0x20, Bar, Centroid)}
	defer b.Close()
	d, err := New(b, &Opts{Type: Bar})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetMode(Mode(7)); err == nil {
		t.Fatal("expected error for invalid mode")
	}
	if d.Mode() != Centroid {
		t.Fatal("mode must not change on invalid SetMode")
	}
}

func TestHalt(t *testing.T) {
	b := &i2ctest.Playback{Ops: initOps(0x20, Bar, Centroid)}
	defer b.Close()
	d, err := New(b, &Opts{Type: Bar})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceTypeStrings(t *testing.T) {
	data := []struct {
		t DeviceType
		s string
	}{
		{Bar, "Trill Bar"},
		{Square, "Trill Square"},
		{Craft, "Trill Craft"},
		{Ring, "Trill Ring"},
		{Hex, "Trill Hex"},
		{Flex, "Trill Flex"},
		{Unknown, "Unknown"},
	}
	for _, l := range data {
		if s := l.t.String(); s != l.s {
			t.Fatalf("%d.String() = %q, want %q", l.t, s, l.s)
		}
	}
}

func TestModeStrings(t *testing.T) {
	data := []struct {
		m Mode
		s string
	}{
		{Centroid, "centroid"},
		{Raw, "raw"},
		{Baseline, "baseline"},
		{Diff, "diff"},
		{Mode(9), "unknown"},
	}
	for _, l := range data {
		if s := l.m.String(); s != l.s {
			t.Fatalf("%d.String() = %q, want %q", l.m, s, l.s)
		}
	}
}
