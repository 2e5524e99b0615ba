// Package logging provides a simple leveled logging interface for the
// media stream server and its CLI.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// DEBUG=true. When LOG_FILE is set, output is also written to a size-rotated
// file (see [EnableFile]).
package logging
