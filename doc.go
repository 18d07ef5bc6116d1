// Package watermark batch-applies a semi-transparent logo to photographs.
//
// Backgrounds come either from regular raster files (PNG, JPEG, WebP) or from
// camera raw files decoded through dcraw. The logo is scaled to a fraction of
// the background width, centered, and alpha blended with a global opacity.
// Pixel buffers carry their channel order explicitly; the pipeline works in
// BGR and converts at the edges.
package watermark
