// Package storage writes collection reports to disk.
//
// Reports come in two forms: the raw CollectionResult as indented JSON,
// and a Markdown document with one section per account. Files are
// written to a temporary name and renamed into place, so a reader never
// sees a half-written report.
//
// Usage:
//
//	manager, err := storage.NewManager("reports")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	name := storage.ReportName(24, time.Now())
//	if _, err := manager.WriteJSON(name, result); err != nil {
//	    log.Printf("Failed to write report: %v", err)
//	}
package storage
