// Package deps locates and reports on the external binaries crunch drives.
package deps
