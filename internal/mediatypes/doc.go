// Package mediatypes classifies files by extension for the catalog and the
// stream server.
//
// It is a dependency-free leaf so every other package can import it without
// creating cycles. The table is fixed at compile time:
//
//	video: .mp4 .mkv .avi .mov .webm
//	audio: .mp3 .wav .flac .ogg .aac
//	image: .jpg .jpeg .png .gif .webp
//
// Matching is case-insensitive. An unknown extension is not an error:
//
//	c, ok := mediatypes.Classify("Movie.MKV")
//	if !ok {
//	    // not media, skip it
//	}
//	_ = c.Kind     // mediatypes.KindVideo
//	_ = c.MimeType // "video/x-matroska"
//
// MimeType falls back to DefaultMimeType for unclassified names, which is
// what the stream server sends for arbitrary files.
package mediatypes
