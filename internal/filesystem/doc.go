/*
Package filesystem wraps the filesystem calls made against library roots with
retry logic for stale network file handles.

Library roots are frequently NFS or SMB mounts. A stale handle (ESTALE) is
usually transient, so Stat, Open and ReadDir retry it with capped exponential
backoff. Every other error is returned on the first attempt.

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
	    return err
	}
	defer f.Close()

Operations are labeled with the library that owns the path through a
VolumeResolver, and reported to the Observer installed with SetObserver. The
metrics package provides the Prometheus-backed Observer.
*/
package filesystem
