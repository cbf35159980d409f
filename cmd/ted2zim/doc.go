// Command ted2zim crawls the TED catalog for a set of topics or a playlist,
// downloads each talk's media and selected subtitle languages, and writes the
// build tree the offline packaging layer consumes.
package main
