// Command mediactl inspects the media libraries served by the stream server
// and prepares its credentials, without starting the server.
//
// Usage:
//
//	mediactl <command> [flags]
//
// Commands:
//
//	libraries   List the configured libraries and their traversal policies.
//	scan TYPE   Scan one library and print its entries as JSON.
//	search Q    Search every library and print ranked entries as JSON.
//	hashpw      Read a password and print the bcrypt hash for
//	            AUTH_PASSWORD_HASH.
//
// Environment:
//
//	LIBRARIES_FILE - Libraries file (default: config.json)
//	MEDIA_ROOT     - Parent of the default libraries (default: ./media)
//
// Scan failures inside a library are reported on stderr; the entries that
// could be read are still printed.
package main
