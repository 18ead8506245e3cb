// Package takeout walks a Google Takeout photo archive and classifies its
// contents.
//
// The scanner groups media files and JSON sidecars per directory (the scope
// sidecar matching operates in) and assigns every media file a destination
// category derived from the Takeout folder convention: Archive and
// "Photos from YYYY" folders hold ungrouped items, Untitled folders hold
// shared-album items, and every other folder is a private album named after
// itself.
package takeout
