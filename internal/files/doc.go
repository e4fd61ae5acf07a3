// Package files provides file system discovery and management for the
// normalization pipeline.
//
// Discovery finds input workbooks (skipping Excel lock files) and
// output artifacts, for the CLI batch mode and the HTTP service.
// Manager covers the basic operations around them: existence checks,
// directory creation, copying and deleting, all relative to a base
// path so the layout stays portable.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/path/to/base")
//	workbooks, err := discovery.FindWorkbooks("input")
//
//	manager := files.NewManager("/path/to/base")
//	if manager.FileExists("output/revenue.csv") {
//	    // already exported
//	}
package files
