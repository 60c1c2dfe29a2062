// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package touch is for documentation only. This repository hosts drivers
// and tools for capacitive touch sensing peripherals.
//
// Wiring
//
// The Trill sensors are 3.3V I²C devices. SDA and SCL must be pulled up to
// 3.3V; most carriers (and the Raspberry Pi) already have pull up resistors
// on the bus, so no extra hardware is needed there.
//
// The sensors have no interrupt line. Reading is done by polling, typically
// every 50ms.
//
// Bus handles
//
// Drivers in this repository never open a bus themselves. Construct an
// i2c.Bus with periph.io/x/periph/conn/i2c/i2creg (after host.Init()) and
// pass it in; the caller keeps ownership and is responsible for closing it.
package touch
