// Package media turns library directory trees into media entries.
//
// A Scanner applies the traversal policy of a library:
//   - FlatRecursive: every classified file below the root, titled from its
//     filename
//   - OneFolderPerTitle: one entry per immediate subdirectory, the first
//     video file it contains, titled with the folder name
//
// Entries are recomputed from the filesystem on every call. Directory read
// failures are recorded on the Result and logged; they never abort a scan.
package media
