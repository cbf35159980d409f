// Package catalog models the videos discovered during a crawl and extracts
// their metadata from the source site's embedded page JSON. Crawl drivers
// walk topic search results or a playlist, hand every talk page to the
// extractor, and merge per-language localizations into a single video record.
package catalog
