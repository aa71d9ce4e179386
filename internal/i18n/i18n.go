// Package i18n resolves the caller's language and renders user-facing
// messages in Bulgarian or English.
// Translations are compiled into the binary; see messages.go.
package i18n

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const (
	// Bulgarian is the default language of the site.
	Bulgarian = "bg"
	English   = "en"

	// Default is used when nothing in the request names a supported language.
	Default = Bulgarian
)

// supported is in matcher preference order; the first entry is the fallback.
var supported = []string{Bulgarian, English}

var matcher = language.NewMatcher([]language.Tag{language.Bulgarian, language.English})

// Resolve picks the response language. An explicit choice (the ?lang= query
// parameter or the site's language switch) wins over the Accept-Language header.
func Resolve(explicit, acceptLanguage string) string {
	if lang, ok := normalize(explicit); ok {
		return lang
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return supported[idx]
}

// normalize maps "EN", "en-GB", "bg_BG" etc. to a supported base language.
func normalize(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	for _, lang := range supported {
		if base.String() == lang {
			return lang, true
		}
	}
	return "", false
}

// T returns the message for key in lang, formatted with args.
// Unknown languages fall back to English; unknown keys return the key itself
// so a missing translation is visible rather than silently empty.
func T(key, lang string, args ...any) string {
	byLang, ok := messages[key]
	if !ok {
		return key
	}
	tmpl, ok := byLang[lang]
	if !ok {
		if tmpl, ok = byLang[English]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

type ctxKey struct{}

// WithLang stores lang in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the language stored by WithLang, or Default.
func FromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return Default
}
