// Package server implements the dartcam control protocol.
//
// The server speaks newline-delimited JSON-RPC 2.0 over a pair of streams,
// normally stdin and stdout. Operators (or a front end) send commands; the
// engine's output arrives as notifications on the same output stream.
//
// # Methods
//
//   - initialize: Handshake, returns the method and notification lists
//   - ping: Health check
//   - status: Current engine snapshot
//   - calibrate: Discard calibration and start calibrating
//   - confirm: Accept the ready board; optional rotation_offset (degrees)
//   - reset: Return to uncalibrated
//   - rotate: Adjust the rotation offset by delta degrees
//   - auto_orient: Locate the "20" segment from the printed numbers
//
// Commands are queued and take effect on the next processed frame. A
// command sent in the wrong state is accepted by the server and rejected by
// the engine with a calibration_status notification carrying the error.
//
// # Notifications
//
//   - score: One per accepted dart, misses included
//   - calibration_status: Calibration progress, orientation and command
//     outcomes
//   - state_changed: {"from": ..., "to": ...}
//
// # Errors
//
//   - -32700: Malformed request line
//   - -32601: Unknown method
//   - -32602: Invalid params
//   - -32000: Engine refused the command (queue full)
//
// # Usage
//
//	srv := server.New(os.Stdout, version, logger)
//	eng := engine.New(cfg, calib, detector, engine.Options{Callbacks: srv.Callbacks()})
//	go eng.Run(ctx, src)
//	if err := srv.Run(os.Stdin, eng); err != nil {
//	    log.Fatal(err)
//	}
package server
