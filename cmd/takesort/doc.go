// Command takesort organizes an extracted Google Takeout media export into
// a clean, upload-ready directory tree: general items, shared-album items,
// and one directory per named album, with sidecar metadata applied to the
// copies.
package main
