// Package util provides small generic helpers shared across scoutkit:
// pointer helpers, value coalescing, and string sanitization for
// credentials and log output.
package util
