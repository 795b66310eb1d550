// Package catalog implements the course catalog read and write paths.
//
// The read path ([Loader.Load], [BuildCatalog]) turns raw content-sheet rows
// into the per-viewer topic/video graph: one access column per registered
// user gates which rows the viewer sees and which videos count as completed.
//
// The write path ([Syncer.Toggle]) flips a single video's completion flag by
// writing the viewer's access cell back to the sheet. Rows or columns that
// cannot be located are treated as a successful no-op, tolerating stale or
// local-only entries.
//
// All spreadsheet access goes through the [Gateway] interface so tests can
// substitute fakes and the package never touches HTTP directly.
package catalog
