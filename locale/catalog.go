package locale

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// DefaultCatalog holds the bundled translation files, one per target
// language, keyed by the source-language text.
//
//go:embed translations/*.toml
var DefaultCatalog embed.FS

// CatalogTranslator looks texts up in go-i18n message files
type CatalogTranslator struct {
	bundle *i18n.Bundle
	source language.Tag
}

// NewCatalogTranslator loads every file under dir in fsys. source is the
// language the stored achievement texts are written in.
func NewCatalogTranslator(source string, fsys fs.FS, dir string) (*CatalogTranslator, error) {
	tag, err := language.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid source language %q: %w", source, err)
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if err := parseTranslationFiles(fsys, dir, bundle); err != nil {
		return nil, err
	}

	return &CatalogTranslator{bundle: bundle, source: tag}, nil
}

func (t *CatalogTranslator) Translate(_ context.Context, text, target string) (string, error) {
	tag, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: invalid target %q", ErrUnavailable, target)
	}
	if SameLanguage(tag.String(), t.source.String()) {
		return text, nil
	}

	localizer := i18n.NewLocalizer(t.bundle, tag.String())
	msg, got, err := localizer.LocalizeWithTag(&i18n.LocalizeConfig{MessageID: text})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// go-i18n falls back to the source language when the target lacks the message
	if !SameLanguage(got.String(), tag.String()) || msg == "" {
		return "", fmt.Errorf("%w: no %s message for %q", ErrUnavailable, tag, text)
	}
	return msg, nil
}

func parseTranslationFiles(fsys fs.FS, dir string, bundle *i18n.Bundle) error {
	return fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}

		if _, err := bundle.ParseMessageFileBytes(data, path); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	})
}
