// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package trill controls the Bela Trill family of capacitive touch sensors
// over I²C.
//
// The family shares one firmware and one register layout: a command area at
// offset 0 and a data area at offset 4. Bar, Ring, Craft and Flex sense
// along a single axis; Square and Hex sense along two. In centroid mode the
// firmware reports up to 5 simultaneous touches per axis (4 on the 2D
// devices), each as a location/size word pair; raw, baseline and diff modes
// report one word per capacitive channel instead.
//
// Each device type claims its own I²C address range, so several sensors can
// share a bus.
//
// Datasheet
//
// https://learn.bela.io/using-trill/
package trill
