// Package engine runs the dart scoring state machine over a stream of
// frames.
//
// # States
//
// The engine moves uncalibrated -> calibrating -> ready -> active.
//
//   - uncalibrated: no board. Waits for a calibration request.
//   - calibrating: calibrates every frame until enough consecutive fits
//     have been accepted, then moves to ready with the smoothed ellipse.
//   - ready: the ellipse is fixed pending operator confirmation. The
//     rotation offset can still be adjusted or found automatically.
//   - active: frames are differenced against the reference frame; each
//     accepted hit is scored and emitted.
//
// Reset returns to uncalibrated from any state.
//
// # Concurrency
//
// Operator commands (RequestCalibrate, Confirm, Reset, AdjustRotationOffset,
// RequestAutoOrient) may be called from any goroutine. They are queued and
// applied at the start of the next ProcessFrame call, so a transition never
// interleaves with the processing of a frame. Callbacks run on the
// goroutine calling ProcessFrame after the engine lock is released.
//
// # Timers
//
// Cooldown and settle delay are deadlines compared against the injected
// clock on each frame; the engine never sleeps.
package engine
