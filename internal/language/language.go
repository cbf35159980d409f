package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Locales the source serves beyond plain ISO 639-1 codes.
var sourceLocales = map[string]struct{}{
	"zh-cn": {},
	"zh-tw": {},
	"pt-br": {},
	"fr-ca": {},
}

// Primary codes that fan out to extra locale variants on the source.
var localeMappings = map[string][]string{
	"zh": {"zh-cn", "zh-tw"},
	"pt": {"pt-br"},
	"fr": {"fr-ca"},
}

// DefaultCode is the site's own language; display names for it carry no
// native-form prefix.
const DefaultCode = "en"

// ToSourceCodes converts language queries (ISO codes, locale codes, or
// English names) into the deduplicated set of codes the source understands.
// Unrecognized queries are dropped.
func ToSourceCodes(queries []string) []string {
	var codes []string
	seen := make(map[string]struct{}, len(queries))
	add := func(code string) {
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	for _, query := range queries {
		normalized := normalizeQuery(query)
		if normalized == "" {
			continue
		}
		if _, ok := sourceLocales[normalized]; ok {
			add(normalized)
			continue
		}
		tag, err := language.Parse(normalized)
		if err != nil {
			continue
		}
		base := normalized
		if b, conf := tag.Base(); conf != language.No {
			base = b.String()
		}
		add(base)
		for _, extra := range localeMappings[base] {
			add(extra)
		}
	}
	return codes
}

// DisplayName builds the track label shown to readers: the language's native
// name prefixed to the source-provided name, except for the site default.
func DisplayName(code, name string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == DefaultCode || code == "" {
		return name
	}
	native := NativeName(code)
	if native == "" {
		return name
	}
	return native + " - " + name
}

// NativeName returns a language's name in that language, or empty when the
// code is unrecognized.
func NativeName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	namer := display.Self
	name := namer.Name(tag)
	// display.Self reports the raw tag for languages it has no entry for.
	if name == "" || strings.EqualFold(name, code) {
		return ""
	}
	return name
}

// Contains reports whether code is in list after trimming and lowercasing.
func Contains(list []string, code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, candidate := range list {
		if strings.ToLower(strings.TrimSpace(candidate)) == code {
			return true
		}
	}
	return false
}

func normalizeQuery(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	return normalized
}
