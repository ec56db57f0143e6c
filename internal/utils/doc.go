// Package utils provides payload validation and HTML sanitizing shared by
// the bridge and its transports.
package utils
