// Package server implements the MCP (Model Context Protocol) front end of the
// screenshot tool.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over stdio, one message per line:
//   - initialize: protocol handshake (protocol version 2024-11-05)
//   - tools/list: enumerate tools; input schemas come from the argument structs
//   - tools/call: execute a tool
//   - ping: health check
//
// Notifications get no response. Unknown methods return -32601; unknown tools
// and undecodable arguments return -32602.
//
// # Tools
//
//   - take_screenshot: capture the screen, an app window, a titled window or
//     one display, and return the saved path
//   - list_windows: enumerate on-screen windows for window mode
//   - screenshot_info: dimensions and format of a capture
//   - screenshot_text: OCR of a capture
//   - screenshot_crop: a region of a capture as a PNG image
//
// A tool that fails returns a normal result with isError set and a message
// such as "Error capturing screenshot: unknown mode: zoom". Inspection tools
// only accept paths of files the capture service wrote.
//
// # Usage
//
//	svc := capture.NewService(capture.Options{...})
//	srv := server.New(svc, server.Options{Version: version, Logger: logger})
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    ...
//	}
package server
