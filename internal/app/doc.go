// Package app wires the Spotify client, the archive index and the download service together
// and runs the commands of the CLI.
package app
