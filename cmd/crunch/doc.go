// Command crunch converts every MP4 under a folder into a small MPEG-2 360p
// rendition via FFmpeg. It also ships dependency, history, and configuration
// subcommands around that core run.
package main
