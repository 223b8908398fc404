// Package i18n resolves message keys to display strings over golang.org/x/text.
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// supported lists the catalogs registered by this package. The first entry is the fallback.
var supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

// Localizer implements domain.MessageLocalizer.
type Localizer struct {
	fallback language.Tag
}

// NewLocalizer returns a Localizer that falls back to defaultLocale, or English when
// defaultLocale is empty or unsupported.
func NewLocalizer(defaultLocale string) *Localizer {
	tag := supported[0]
	if t, ok := parse(defaultLocale); ok {
		tag = t
	}
	return &Localizer{fallback: tag}
}

// Localize formats key for locale. Keys without a catalog entry render as the key itself.
func (l *Localizer) Localize(locale, key string, args ...any) string {
	tag := l.Match(locale)
	return message.NewPrinter(tag).Sprintf(key, args...)
}

// Match picks the best supported tag for a locale or Accept-Language value.
func (l *Localizer) Match(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return l.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return l.fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return l.fallback
	}
	return supported[idx]
}

// Locale returns the base language of the best match for r's Accept-Language header.
func (l *Localizer) Locale(r *http.Request) string {
	if r == nil {
		return base(l.fallback)
	}
	return base(l.Match(r.Header.Get("Accept-Language")))
}

func parse(s string) (language.Tag, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return language.Und, false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.Und, false
	}
	return supported[idx], true
}

func base(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}

func register(tag language.Tag, entries map[string]string) {
	for key, msg := range entries {
		if err := message.SetString(tag, key, msg); err != nil {
			panic("i18n: register " + key + ": " + err.Error())
		}
	}
}
