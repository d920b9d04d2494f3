// Package engine turns a spreadsheet into the delimited text files described
// by the result configuration.
//
// Processing is a linear pipeline; each stage failure is terminal for the run
// and surfaces as a categorized *failure.Error on the Result:
//
//  1. validate the file bytes and the workbook structure
//  2. extract header cells, seeded with the source's default values
//  3. extract detail rows, dropping columns no property maps
//  4. merge user input over the header (highest precedence)
//  5. normalize date fields to digits only
//  6. check that every required header field has a value
//  7. render header and detail text
//  8. name the archive from the base name template
//
// The engine holds no mutable state. The same bytes and configuration always
// produce the same texts and archive name, and an Engine may be shared by
// concurrent callers. Timeouts and cancellation belong to the caller's I/O.
package engine
