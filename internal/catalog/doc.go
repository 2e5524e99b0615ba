/*
Package catalog serves media entries for the configured libraries.

The Service rescans a library from the filesystem for every listing and
search, so results always reflect the current state of disk. Resolving a
single entry by id re-derives it from live metadata and never consults a
scan.

# Caching

Large libraries can opt into a Cache (CATALOG_CACHE=true). Snapshots are kept
per library and dropped when fsnotify reports any change below that
library's root, or when the optional TTL elapses. Without a cache, no state is
shared between requests.

# Search

Search scans every library concurrently, bounded by the configured worker
count, and ranks case-insensitive substring matches on title or group folder:

 1. exact title match
 2. title prefix match
 3. everything else

Within a rank, entries are ordered by title. A library that fails to scan is
logged and skipped.
*/
package catalog
