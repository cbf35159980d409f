package config

const (
	defaultBuildDir       = "~/.local/share/ted2zim/build"
	defaultOutputDir      = "~/.local/share/ted2zim/output"
	defaultStateDir       = "~/.local/share/ted2zim/state"
	defaultLogDir         = "~/.local/share/ted2zim/logs"
	defaultSubtitles      = "all"
	defaultThreads        = 1
	defaultVideoFormat    = "webm"
	defaultRequestTimeout = 60
	defaultUserAgent      = "Mozilla/5.0"
	defaultBaseURL        = "https://www.ted.com"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// SettingAll requests subtitles in every language the source offers.
const SettingAll = "all"

// SettingMatching requests only subtitles matching the page language.
const SettingMatching = "matching"

// SettingNone disables subtitle retrieval.
const SettingNone = "none"

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BuildDir:  defaultBuildDir,
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		Scraper: Scraper{
			Subtitles:   defaultSubtitles,
			Threads:     defaultThreads,
			VideoFormat: defaultVideoFormat,
		},
		Fetch: Fetch{
			RequestTimeout: defaultRequestTimeout,
			UserAgent:      defaultUserAgent,
			BaseURL:        defaultBaseURL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
