// Package sticker places rendered QR codes onto the printable sticker
// template and writes print-ready PNG files.
package sticker
