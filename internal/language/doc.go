// Package language maps user-supplied language queries onto the codes the
// source site actually serves. The site mostly uses ISO 639-1, keeps a small
// set of regional locale codes (zh-cn, zh-tw, pt-br, fr-ca), and expects
// bare primary codes to fan out to those locales. Display names prefix the
// language's own native form so a reader browsing a foreign-language track
// list can find theirs.
package language
