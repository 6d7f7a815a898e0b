// Package archive keeps the append-only records of downloaded items.
// Every output directory carries a hidden index of the items placed in it,
// and one global index remembers every item ever downloaded.
// Both are tab-separated text files that tolerate hand edits and truncated lines.
package archive
