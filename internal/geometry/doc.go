// Package geometry holds the 2D and 3D value types shared by the calibration
// pipeline: image points and lines, image sizes, and 3x3 rotations.
//
// Image points come in three units and every function states which one it
// takes and returns:
//
//   - pixels: origin at the bottom-left corner of the render, y grows upward
//   - normalized: pixels divided by the image width and height, in [0,1]
//   - relative: offset from the principal point divided by the image width
//
// Relative coordinates are isotropic (both axes share one scale), which is
// what the closed-form rotation needs. Normalized coordinates are not, unless
// the image is square.
package geometry
