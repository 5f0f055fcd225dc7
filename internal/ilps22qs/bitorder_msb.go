// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build bitorder_msb

package ilps22qs

// Built with -tags bitorder_msb: the first declared field of every layout
// occupies the most significant bits.
const msbFirst = true
