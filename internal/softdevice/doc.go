// Package softdevice is an in-memory implementation of rtcore.Device and
// rtcore.Recorder.
//
// Buffers are plain byte slices with synthetic GPU addresses. Signatures and
// pipeline states are validated with the same rules a driver applies, and
// recorded commands execute on the host when the command list is submitted.
// The package backs the unit tests of the builders and cmd/rtdemo.
package softdevice
