// Package sigildex catalogs graphical symbols ("sigils") extracted from
// scanned historical documents. It renders source scans to page images,
// detects symbol-like regions on each page, cleans detected regions into
// cropped, transparent, resolution-normalized assets, and links the results
// to a relational catalog of symbols, sources and rites.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., sqlite/, fitz/, detect/).
package sigildex
