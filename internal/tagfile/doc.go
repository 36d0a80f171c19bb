// package tagfile reads track metadata from audio files and writes the genre back.
//
// Reading supports every container github.com/dhowden/tag understands.
// Writing supports MP3 (ID3v2) and FLAC (Vorbis comments), either to the
// genre frame or to a custom field. FLAC files without audio frames are
// rejected with [shared.ErrCorruptFile] rather than rewritten.
package tagfile
