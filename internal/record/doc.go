// Package record keeps the append-only action log of a painting session and
// plays it back.
//
//   - [Recorder]: timestamped log, bootstrapped with the controls at t = 0
//   - [Session]: the persisted form, JSON via [Encode] and [Decode]
//   - [Player]: dispatches actions by elapsed time into a [Target]
//
// Playback reproduces the input sequence. Field values match the original
// only when frames are replayed with the recorded frame times; any other
// cadence may drift, which is accepted.
package record
