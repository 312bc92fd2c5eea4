// Package source provides frame sources for the scoring engine.
//
//   - DirSource replays the image files of a directory in lexical order,
//     optionally looping and throttled to a frame rate.
//   - Camera captures from a video device through gocv. It is only
//     available in builds with the gocv tag; otherwise OpenCamera returns
//     ErrCameraUnavailable.
//
// Both return io.EOF from Next once no further frames will come.
package source
