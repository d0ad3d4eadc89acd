// Package locale translates achievement text into a user's language.
package locale

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"userachievements/config"
)

// ErrUnavailable is returned when a text cannot be translated. Callers
// degrade to the original text.
var ErrUnavailable = errors.New("translation unavailable")

// Translator maps text into the target language ("ru", "en", ...)
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// New builds the translator selected by cfg.Backend
func New(cfg config.TranslatorConfig, log *zap.Logger) (Translator, error) {
	switch cfg.Backend {
	case config.TranslatorCatalog, "":
		return NewCatalogTranslator(cfg.SourceLanguage, DefaultCatalog, "translations")
	case config.TranslatorHTTP:
		return NewHTTPTranslator(cfg, log), nil
	case config.TranslatorNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown translator backend %q", cfg.Backend)
	}
}

// Nop returns every text unchanged
type Nop struct{}

func (Nop) Translate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

// SameLanguage reports whether a and b name the same base language.
// Unparseable tags never match.
func SameLanguage(a, b string) bool {
	ta, err := language.Parse(a)
	if err != nil {
		return false
	}
	tb, err := language.Parse(b)
	if err != nil {
		return false
	}
	ba, _ := ta.Base()
	bb, _ := tb.Base()
	return ba == bb
}
