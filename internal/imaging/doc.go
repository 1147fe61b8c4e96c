// Package imaging reads, downscales and crops captured screenshots.
//
// Coordinates are 0-based with (0,0) at the top-left corner. A Rect's
// (X1,Y1) corner is inclusive and its (X2,Y2) corner exclusive.
//
// Decoding and resampling use github.com/disintegration/imaging; FitWidth
// rewrites the file in place so every later reader sees the same pixels.
package imaging
