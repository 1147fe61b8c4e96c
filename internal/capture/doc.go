// Package capture implements the screenshot core shared by the MCP and HTTP
// front ends.
//
// A capture runs strictly in sequence:
//
//  1. Validate the Request (mode present and known, target present for every
//     mode except full).
//  2. Resolve the target, if any: an app name through System Events, a window
//     title through the CoreGraphics on-screen window list, a display number
//     directly.
//  3. Run screencapture, writing a PNG to <temp dir>/ui-<unix seconds>.png.
//  4. Decode the PNG, downscaling it when the request sets max_width.
//  5. Copy the image to the clipboard. This step is best-effort: failures are
//     logged and reported as CopiedToClipboard=false, never as an error.
//  6. Schedule the file for deletion after the cleanup delay (60s).
//
// # Errors
//
// Every error returned by Service.Capture is marked with one of
// ErrMissingField, ErrUnknownMode, ErrInvalidArgument, ErrResolutionFailure or
// ErrCaptureFailure. Front ends translate them with KindOf into their own
// conventions (JSON-RPC results, HTTP status codes).
//
// # External commands
//
// All subprocesses go through a CommandRunner. ExecRunner bounds each call
// with a timeout so a hung screencapture or osascript cannot pin a request
// forever. Tests substitute a recording fake.
package capture
