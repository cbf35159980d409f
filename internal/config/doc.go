// Package config loads, validates, and defaults the TOML configuration that
// drives a scraper run: which topics or playlist to crawl, which languages to
// request, the subtitle policy, directory layout, and HTTP client settings.
package config
