// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package trill // import "periph.io/x/touch/devices/trill"

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/periph/conn"
	"periph.io/x/periph/conn/i2c"
)

// Touch is one detected contact point.
//
// Location is the centroid position along the sensing axis and Size the
// magnitude of the contact. Both are raw sensor units; see
// DeviceType.PositionMax and DeviceType.SizeMax for the per device scale.
type Touch struct {
	Location uint16
	Size     uint16
}

// Mode selects what the scanning engine reports.
type Mode int8

// Valid modes.
//
// Centroid is the only mode in which Read decodes touches. The other modes
// report per channel words through ReadRaw.
const (
	Centroid Mode = 0
	Raw      Mode = 1
	Baseline Mode = 2
	Diff     Mode = 3
)

func (m Mode) String() string {
	switch m {
	case Centroid:
		return "centroid"
	case Raw:
		return "raw"
	case Baseline:
		return "baseline"
	case Diff:
		return "diff"
	default:
		return "unknown"
	}
}

// DeviceType identifies a member of the Trill sensor family.
type DeviceType int8

// Trill device types as reported by the identify command.
const (
	Unknown DeviceType = 0
	Bar     DeviceType = 1
	Square  DeviceType = 2
	Craft   DeviceType = 3
	Ring    DeviceType = 4
	Hex     DeviceType = 5
	Flex    DeviceType = 6
)

func (t DeviceType) String() string {
	switch t {
	case Bar:
		return "Trill Bar"
	case Square:
		return "Trill Square"
	case Craft:
		return "Trill Craft"
	case Ring:
		return "Trill Ring"
	case Hex:
		return "Trill Hex"
	case Flex:
		return "Trill Flex"
	default:
		return "Unknown"
	}
}

// addrRange returns the valid I²C address range for the device type. The
// first address is also the factory default.
func (t DeviceType) addrRange() (first, last uint16) {
	switch t {
	case Bar:
		return 0x20, 0x28
	case Square:
		return 0x28, 0x30
	case Craft:
		return 0x30, 0x38
	case Ring:
		return 0x38, 0x40
	case Hex:
		return 0x40, 0x48
	case Flex:
		return 0x48, 0x50
	default:
		return 0, 0
	}
}

// PositionMax returns the largest Location value the device reports in
// centroid mode.
func (t DeviceType) PositionMax() uint16 {
	switch t {
	case Bar:
		return 3200
	case Ring:
		return 3456
	case Square:
		return 1792
	case Hex:
		return 1920
	case Flex:
		return 3712
	default:
		return 4096
	}
}

// SizeMax returns the largest Size value the device reports in centroid
// mode.
func (t DeviceType) SizeMax() uint16 {
	switch t {
	case Bar:
		return 4566
	case Ring:
		return 5000
	case Square:
		return 3780
	case Hex:
		return 4000
	case Flex:
		return 1200
	default:
		return 4096
	}
}

// is1D reports whether the type senses along a single axis.
func (t DeviceType) is1D() bool {
	switch t {
	case Bar, Ring, Craft, Flex:
		return true
	default:
		return false
	}
}

// is2D reports whether the type senses along two axes.
func (t DeviceType) is2D() bool {
	return t == Square || t == Hex
}

// centroidLen returns the length in bytes of one centroid frame.
func (t DeviceType) centroidLen() int {
	switch t {
	case Square, Hex:
		return centroidLen2D
	case Ring:
		return centroidLenRing
	default:
		return centroidLenDefault
	}
}

// rawLen returns the length in bytes of one raw/baseline/diff frame.
func (t DeviceType) rawLen() int {
	switch t {
	case Bar:
		return rawLenBar
	case Ring:
		return rawLenRing
	default:
		return rawLenDefault
	}
}

// TransportError is returned when the underlying bus transaction failed.
//
// The touch state held by the Dev is left untouched when a TransportError
// occurs, so the previous frame stays readable.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "trill: " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Opts holds the configuration of the device.
type Opts struct {
	// Type is the expected device type. It is mandatory; New fails if the
	// sensor identifies as anything else.
	Type DeviceType
	// Addr is the I²C address. Zero means the factory default for Type.
	Addr uint16
	// Mode is the initial scanning mode. The zero value is Centroid.
	Mode Mode
}

// DefaultOpts is the recommended configuration for a Trill Bar.
var DefaultOpts = Opts{Type: Bar}

// Dev is a handle to a Trill sensor on an I²C bus.
//
// The bus is owned by the caller. Dev performs no locking; access it from a
// single goroutine, the way the sensor is meant to be polled.
type Dev struct {
	c       i2c.Dev
	typ     DeviceType
	mode    Mode
	version uint8

	// State of the last successfully decoded centroid frame.
	vert    []Touch
	horiz   []Touch
	buttons [2]uint16
}

// New opens a handle to a Trill sensor.
//
// It identifies the sensor, verifies it matches opts.Type and programs the
// initial mode, scan settings and baseline. The bus b remains owned by the
// caller.
func New(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Type < Bar || opts.Type > Flex {
		return nil, errors.New("trill: device type must be specified")
	}
	first, last := opts.Type.addrRange()
	addr := opts.Addr
	if addr == 0 {
		addr = first
	}
	if addr < first || addr > last {
		return nil, fmt.Errorf("trill: address %#02x must be in [%#02x, %#02x] for %s", addr, first, last, opts.Type)
	}
	d := &Dev{c: i2c.Dev{Bus: b, Addr: addr}, typ: opts.Type, mode: opts.Mode}
	typ, ver, err := d.Identify()
	if err != nil {
		return nil, err
	}
	if typ != opts.Type {
		return nil, fmt.Errorf("trill: device at %#02x identifies as %s; expected %s", addr, typ, opts.Type)
	}
	d.version = ver
	if err := d.SetMode(opts.Mode); err != nil {
		return nil, err
	}
	time.Sleep(cmdDelay)
	if err := d.SetScanSettings(0, 12); err != nil {
		return nil, err
	}
	time.Sleep(cmdDelay)
	if err := d.UpdateBaseline(); err != nil {
		return nil, err
	}
	// Let the scanning engine settle before the first frame is read.
	time.Sleep(cmdDelay)
	return d, nil
}

func (d *Dev) String() string {
	return d.typ.String() + "{" + d.c.String() + "}"
}

// Halt implements conn.Resource.
//
// The sensor has no command to stop its scanning engine, so this is a
// no-op.
func (d *Dev) Halt() error {
	return nil
}

// Type returns the device type the sensor identified as.
func (d *Dev) Type() DeviceType {
	return d.typ
}

// Mode returns the current scanning mode.
func (d *Dev) Mode() Mode {
	return d.mode
}

// FirmwareVersion returns the version reported by the identify command.
func (d *Dev) FirmwareVersion() uint8 {
	return d.version
}

// Addr returns the I²C address in use.
func (d *Dev) Addr() uint16 {
	return d.c.Addr
}

// NumChannels returns the number of capacitive channels on the sensor.
func (d *Dev) NumChannels() int {
	switch d.typ {
	case Bar:
		return 26
	default:
		return 30
	}
}

// NumButtons returns the number of button channels.
//
// Only the Trill Ring has buttons, and only in centroid mode.
func (d *Dev) NumButtons() int {
	if d.typ == Ring && d.mode == Centroid {
		return 2
	}
	return 0
}

// ButtonValue returns the capacitance reading of button i as of the last
// Read. It returns 0 for indices out of [0, NumButtons()).
func (d *Dev) ButtonValue(i int) uint16 {
	if i < 0 || i >= d.NumButtons() {
		return 0
	}
	return d.buttons[i]
}

// MaxTouches returns the largest number of simultaneous touches the
// device reports per axis: 5 for 1D devices, 4 for 2D devices, 0 outside
// centroid mode.
func (d *Dev) MaxTouches() int {
	switch {
	case d.Is2D():
		return 4
	case d.Is1D():
		return 5
	default:
		return 0
	}
}

// Is1D reports whether the device senses along a single axis in the
// current mode.
func (d *Dev) Is1D() bool {
	return d.mode == Centroid && d.typ.is1D()
}

// Is2D reports whether the device senses along two axes in the current
// mode.
func (d *Dev) Is2D() bool {
	return d.mode == Centroid && d.typ.is2D()
}

// Identify asks the sensor for its device type and firmware version.
func (d *Dev) Identify() (DeviceType, uint8, error) {
	r, err := d.command([]byte{offsetCmd, cmdIdentify}, 3)
	if err != nil {
		return Unknown, 0, err
	}
	// First byte is the register offset echo; then type, then version.
	return DeviceType(r[1]), r[2], nil
}

// Read refreshes the touch state from the sensor.
//
// The device must be in centroid mode. On a bus failure the previous frame
// is preserved and a *TransportError is returned.
func (d *Dev) Read() error {
	if d.mode != Centroid {
		return errNotCentroid
	}
	buf := make([]byte, d.typ.centroidLen())
	if err := d.readFrame(buf); err != nil {
		return err
	}
	w := words(buf)
	if d.typ.is2D() {
		// 16 words: vertical locations, vertical sizes, horizontal
		// locations, horizontal sizes, 4 each.
		d.vert = touches(w[0:4], w[4:8])
		d.horiz = touches(w[8:12], w[12:16])
		return nil
	}
	// 1D layout: locations then sizes, 5 each. The Ring appends its two
	// button words after the sizes.
	d.vert = touches(w[0:5], w[5:10])
	d.horiz = nil
	if d.typ == Ring {
		d.buttons[0] = w[10]
		d.buttons[1] = w[11]
	}
	return nil
}

// ReadRaw reads one frame of per channel data.
//
// The device must be in raw, baseline or diff mode. The slice holds one
// word per capacitive channel.
func (d *Dev) ReadRaw() ([]uint16, error) {
	if d.mode == Centroid {
		return nil, errCentroid
	}
	buf := make([]byte, d.typ.rawLen())
	if err := d.readFrame(buf); err != nil {
		return nil, err
	}
	return words(buf), nil
}

// TouchCount returns the number of active touches as of the last Read.
//
// For 2D devices this is the vertical axis count.
func (d *Dev) TouchCount() int {
	return len(d.vert)
}

// TouchAt returns touch i as of the last Read.
//
// Indices outside [0, TouchCount()) return the zero Touch.
func (d *Dev) TouchAt(i int) Touch {
	if i < 0 || i >= len(d.vert) {
		return Touch{}
	}
	return d.vert[i]
}

// Touches returns a copy of the active touches as of the last Read.
func (d *Dev) Touches() []Touch {
	out := make([]Touch, len(d.vert))
	copy(out, d.vert)
	return out
}

// HorizontalTouchCount returns the number of active touches on the
// horizontal axis as of the last Read. It is always 0 for 1D devices.
func (d *Dev) HorizontalTouchCount() int {
	return len(d.horiz)
}

// HorizontalTouchAt returns horizontal touch i as of the last Read.
//
// Indices outside [0, HorizontalTouchCount()) return the zero Touch.
func (d *Dev) HorizontalTouchAt(i int) Touch {
	if i < 0 || i >= len(d.horiz) {
		return Touch{}
	}
	return d.horiz[i]
}

// HorizontalTouches returns a copy of the active horizontal touches as of
// the last Read.
func (d *Dev) HorizontalTouches() []Touch {
	out := make([]Touch, len(d.horiz))
	copy(out, d.horiz)
	return out
}

// SetMode switches the scanning mode.
func (d *Dev) SetMode(m Mode) error {
	if m < Centroid || m > Diff {
		return fmt.Errorf("trill: invalid mode %d", m)
	}
	if _, err := d.command([]byte{offsetCmd, cmdMode, byte(m)}, 0); err != nil {
		return err
	}
	d.mode = m
	return nil
}

// SetScanSettings programs the scanning speed and resolution.
//
// speed is clamped to [0, 3] where 0 is the fastest, bits to [9, 16].
func (d *Dev) SetScanSettings(speed, bits int) error {
	if speed > 3 {
		speed = 3
	}
	if speed < 0 {
		speed = 0
	}
	if bits < 9 {
		bits = 9
	}
	if bits > 16 {
		bits = 16
	}
	_, err := d.command([]byte{offsetCmd, cmdScanSettings, byte(speed), byte(bits)}, 0)
	return err
}

// SetPrescaler programs the capacitance prescaler, clamped to [0, 8].
//
// Larger values accommodate larger baseline capacitance, for example when
// sensing through thick overlay material.
func (d *Dev) SetPrescaler(p int) error {
	if p > prescalerMax {
		p = prescalerMax
	}
	if p < 0 {
		p = 0
	}
	_, err := d.command([]byte{offsetCmd, cmdPrescaler, byte(p)}, 0)
	return err
}

// SetNoiseThreshold programs the reading below which a channel is treated
// as noise, clamped to [0, 255].
func (d *Dev) SetNoiseThreshold(threshold int) error {
	if threshold > 255 {
		threshold = 255
	}
	if threshold < 0 {
		threshold = 0
	}
	_, err := d.command([]byte{offsetCmd, cmdNoiseThreshold, byte(threshold)}, 0)
	return err
}

// SetIDAC programs the IDAC value of the capacitive sensing engine.
func (d *Dev) SetIDAC(value uint8) error {
	_, err := d.command([]byte{offsetCmd, cmdIDAC, value}, 0)
	return err
}

// SetMinimumTouchSize programs the smallest contact Size reported in
// centroid mode; smaller contacts are discarded by the firmware.
func (d *Dev) SetMinimumTouchSize(size uint16) error {
	_, err := d.command([]byte{offsetCmd, cmdMinimumSize, byte(size >> 8), byte(size)}, 0)
	return err
}

// SetAutoScanInterval programs the scan interval used in low power
// auto-scan.
func (d *Dev) SetAutoScanInterval(interval uint16) error {
	_, err := d.command([]byte{offsetCmd, cmdAutoScanInterval, byte(interval >> 8), byte(interval)}, 0)
	return err
}

// UpdateBaseline makes the sensor re-capture its capacitance baseline.
//
// Call it when nothing is touching the sensor.
func (d *Dev) UpdateBaseline() error {
	_, err := d.command([]byte{offsetCmd, cmdBaselineUpdate}, 0)
	return err
}

// command writes a command frame and optionally reads back readLen bytes.
func (d *Dev) command(cmd []byte, readLen int) ([]byte, error) {
	if err := d.c.Tx(cmd, nil); err != nil {
		return nil, &TransportError{Op: fmt.Sprintf("command %#02x", cmd[1]), Err: err}
	}
	if readLen == 0 {
		return nil, nil
	}
	// The firmware needs time to prepare the reply.
	time.Sleep(replyDelay)
	buf := make([]byte, readLen)
	if err := d.c.Tx(nil, buf); err != nil {
		return nil, &TransportError{Op: fmt.Sprintf("command %#02x reply", cmd[1]), Err: err}
	}
	return buf, nil
}

// readFrame points the register offset at the data area and reads one
// frame into buf.
func (d *Dev) readFrame(buf []byte) error {
	if err := d.c.Tx([]byte{offsetData}, nil); err != nil {
		return &TransportError{Op: "select data offset", Err: err}
	}
	if err := d.c.Tx(nil, buf); err != nil {
		return &TransportError{Op: "read frame", Err: err}
	}
	return nil
}

// words merges byte pairs into big endian 16 bit values.
func words(b []byte) []uint16 {
	w := make([]uint16, len(b)/2)
	for i := range w {
		w[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return w
}

// touches pairs location and size words into Touch records, stopping at
// the 0xffff sentinel that marks the end of the active touches.
func touches(locations, sizes []uint16) []Touch {
	var out []Touch
	for i := range locations {
		if locations[i] == noTouch {
			break
		}
		out = append(out, Touch{Location: locations[i], Size: sizes[i]})
	}
	return out
}

// Register offsets and command codes of the Trill firmware.
const (
	offsetCmd  = 0x00
	offsetData = 0x04

	cmdMode             = 1
	cmdScanSettings     = 2
	cmdPrescaler        = 3
	cmdNoiseThreshold   = 4
	cmdIDAC             = 5
	cmdBaselineUpdate   = 6
	cmdMinimumSize      = 7
	cmdAutoScanInterval = 16
	cmdIdentify         = 255
)

const (
	// Delay between configuration commands.
	cmdDelay = 15 * time.Millisecond
	// Delay between a command write and reading its reply.
	replyDelay = 25 * time.Millisecond

	// Centroid frame lengths in bytes.
	centroidLenDefault = 20
	centroidLenRing    = 24
	centroidLen2D      = 32

	// Raw/baseline/diff frame lengths in bytes.
	rawLenDefault = 60
	rawLenBar     = 52
	rawLenRing    = 56

	prescalerMax = 8

	// Location word marking the end of the active touches in a frame.
	noTouch = 0xffff
)

var (
	errNotCentroid = errors.New("trill: device must be in centroid mode")
	errCentroid    = errors.New("trill: device must not be in centroid mode")
)

var _ conn.Resource = &Dev{}
