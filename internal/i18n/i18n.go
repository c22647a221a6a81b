// Package i18n renders human-readable text for rejection codes.
//
// Every rejection code surfaced by a decider has an en-US message template
// here. Catalogs are keyed by locale; lookup falls back to the base locale
// so an unknown locale still produces a readable message instead of a bare
// code.
package i18n

import (
	"bytes"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mverberg/broadside/internal/domain/command"
)

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

// Code is a machine-readable rejection code.
type Code string

// Catalog holds the message templates for one locale.
type Catalog struct {
	locale   string
	tag      language.Tag
	messages map[Code]string
}

// Locale returns the catalog's locale identifier.
func (c *Catalog) Locale() string {
	if c == nil {
		return ""
	}
	return c.locale
}

// Has reports whether the catalog defines a message for the code.
func (c *Catalog) Has(code Code) bool {
	if c == nil {
		return false
	}
	_, ok := c.messages[code]
	return ok
}

// Codes returns every code the catalog defines, sorted.
func (c *Catalog) Codes() []Code {
	if c == nil {
		return nil
	}
	out := make([]Code, 0, len(c.messages))
	for code := range c.messages {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Format renders the message for a code, interpolating {{.Key}} metadata
// references. Unknown codes fall back to a generic line so callers never
// surface a bare template miss to the player.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	if c == nil {
		return genericMessage
	}
	raw, ok := c.messages[Code(code)]
	if !ok {
		return genericMessage
	}
	if !strings.Contains(raw, "{{") {
		return raw
	}
	tmpl, err := template.New(code).Option("missingkey=zero").Parse(raw)
	if err != nil {
		return raw
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return raw
	}
	return buf.String()
}

const genericMessage = "The command could not be completed"

// ordered lists the configured catalogs with the base locale first so it
// wins ties and unknowns during matching.
var ordered = []*Catalog{enUSCatalog}

var matcher = buildMatcher()

func buildMatcher() language.Matcher {
	tags := make([]language.Tag, 0, len(ordered))
	for _, catalog := range ordered {
		tags = append(tags, catalog.tag)
	}
	return language.NewMatcher(tags)
}

// GetCatalog returns the catalog best matching the requested locale,
// defaulting to the base locale.
func GetCatalog(locale string) *Catalog {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return ordered[0]
	}
	for _, catalog := range ordered {
		if catalog.locale == locale {
			return catalog
		}
	}
	requested, err := language.Parse(locale)
	if err != nil {
		return ordered[0]
	}
	// Match returns a synthesized tag; the index is the reliable way to
	// recover the supported catalog.
	_, index, _ := matcher.Match(requested)
	if index < 0 || index >= len(ordered) {
		return ordered[0]
	}
	return ordered[index]
}

// RejectionText renders the user-facing line for one rejection. Codes the
// catalog knows render from their template; unknown codes fall back to the
// decider's own message, then to the generic line.
func RejectionText(locale string, rejection command.Rejection) string {
	catalog := GetCatalog(locale)
	if catalog.Has(Code(rejection.Code)) {
		return catalog.Format(rejection.Code, nil)
	}
	if strings.TrimSpace(rejection.Message) != "" {
		return rejection.Message
	}
	return genericMessage
}

// Register publishes every catalog message through x/text so message
// printers resolve the same strings the engine renders directly.
func Register() error {
	for _, catalog := range ordered {
		codes := catalog.Codes()
		for _, code := range codes {
			message.SetString(catalog.tag, string(code), catalog.messages[code])
		}
	}
	return nil
}
