// Package rasterizer renders a slide deck into one PNG per slide.
//
// The CLI implementation converts the deck to PDF with LibreOffice and then
// rasterizes each page with Poppler's pdftoppm at the configured frame size.
package rasterizer
