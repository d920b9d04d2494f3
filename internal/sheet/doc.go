// Package sheet is the spreadsheet access layer.
//
// It wraps a parsed workbook and exposes two reads: a single cell by A1
// address and a table anchored at its top-left header cell. Values are
// formatted to strings with one set of rules regardless of the container
// format, so the extraction engine never sees spreadsheet internals.
//
// Two backends decode raw bytes:
//   - ZIP-based Office files (.xlsx, .xlsm) via github.com/xuri/excelize/v2
//   - compound binary files (.xls): github.com/richardlehane/mscfb opens the
//     container and the BIFF8 records are decoded in this package
//
// Open picks the backend from the file signature.
//
// Thread-safety: a Workbook is read-only after Open. Concurrent reads are safe
// as long as the backend is; each extraction run opens its own Workbook.
package sheet
