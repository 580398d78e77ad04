// Package display renders scan results for the terminal.
//
// Matches are printed one per line in the grep-like form
//
//	path:offset: number
//
// where offset is the byte offset of the match in the extracted text.
// Inputs that could not be read are collected into a single Warning
// printed after the matches so they do not interleave with results.
package display
