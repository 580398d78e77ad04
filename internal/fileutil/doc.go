// Package fileutil finds the files a scan should read.
//
// ScanDirectory walks a directory tree with extension, filename-pattern,
// exclusion and depth filters. Hidden directories are skipped unless
// IncludeHidden is set. Output is sorted absolute paths, and problems with
// individual entries are collected instead of aborting the walk.
//
// Paths are always built with path/filepath so the same code produces
// "notes/a.txt" on Linux and "notes\a.txt" on Windows:
//
//	files := fileutil.JoinPaths(`C:\Users\asweigart`, []string{"accounts.txt", "details.csv"})
//	// C:\Users\asweigart\accounts.txt, C:\Users\asweigart\details.csv (on Windows)
//
// Typical scan of a notes directory:
//
//	result, err := fileutil.ScanDirectory("notes", fileutil.ScanOptions{
//	    Extensions:  []string{".txt", ".md", ".html"},
//	    Recursive:   true,
//	    ExcludeDirs: []string{"node_modules"},
//	})
package fileutil
