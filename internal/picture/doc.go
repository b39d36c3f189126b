// Package picture downloads thread images and keeps the large ones.
//
// Only the image header is decoded to learn the dimensions. GIF, JPEG,
// PNG, BMP and WebP are understood. Images narrower or shorter than the
// configured minimum are dropped without touching the disk; the rest are
// written to the thread folder under the last path segment of their URL.
package picture
