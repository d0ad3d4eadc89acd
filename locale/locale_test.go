package locale

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"userachievements/config"
)

func TestCatalogTranslator(t *testing.T) {
	tr, err := NewCatalogTranslator("en", DefaultCatalog, "translations")
	require.NoError(t, err)
	ctx := context.Background()

	got, err := tr.Translate(ctx, "First Steps", "ru")
	require.NoError(t, err)
	assert.Equal(t, "Первые шаги", got)

	got, err = tr.Translate(ctx, "First Steps", "en")
	require.NoError(t, err)
	assert.Equal(t, "First Steps", got, "source language is returned unchanged")

	_, err = tr.Translate(ctx, "Some custom achievement", "ru")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = tr.Translate(ctx, "First Steps", "de")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = tr.Translate(ctx, "First Steps", "not a tag!")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCatalogTranslatorCustomFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"catalog/active.ru.toml": {Data: []byte(`"Hello" = "Привет"`)},
	}

	tr, err := NewCatalogTranslator("en", fsys, "catalog")
	require.NoError(t, err)

	got, err := tr.Translate(context.Background(), "Hello", "ru-RU")
	require.NoError(t, err)
	assert.Equal(t, "Привет", got)
}

func TestCatalogTranslatorRejectsBrokenFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"catalog/active.ru.toml": {Data: []byte(`"Hello" = `)},
	}

	_, err := NewCatalogTranslator("en", fsys, "catalog")
	assert.Error(t, err)
}

func TestHTTPTranslator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "en", req.Source)
		assert.Equal(t, "ru", req.Target)
		assert.Equal(t, "secret", req.APIKey)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(translateResponse{TranslatedText: "[ru] " + req.Q})
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(config.TranslatorConfig{
		URL:            srv.URL,
		APIKey:         "secret",
		SourceLanguage: "en",
		Timeout:        time.Second,
	}, zap.NewNop())

	got, err := tr.Translate(context.Background(), "Collector", "ru")
	require.NoError(t, err)
	assert.Equal(t, "[ru] Collector", got)

	got, err = tr.Translate(context.Background(), "Collector", "en")
	require.NoError(t, err)
	assert.Equal(t, "Collector", got)
}

func TestHTTPTranslatorOpensBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"backend down"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(config.TranslatorConfig{
		URL:            srv.URL,
		SourceLanguage: "en",
		Timeout:        time.Second,
	}, zap.NewNop())

	for i := 0; i < failureThreshold; i++ {
		_, err := tr.Translate(context.Background(), "Collector", "ru")
		assert.ErrorIs(t, err, ErrUnavailable)
	}
	assert.EqualValues(t, failureThreshold, calls.Load())

	_, err := tr.Translate(context.Background(), "Collector", "ru")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.EqualValues(t, failureThreshold, calls.Load(), "open breaker must not reach the backend")
}

func TestNewSelectsBackend(t *testing.T) {
	tr, err := New(config.TranslatorConfig{Backend: config.TranslatorNone}, zap.NewNop())
	require.NoError(t, err)
	got, err := tr.Translate(context.Background(), "text", "ru")
	require.NoError(t, err)
	assert.Equal(t, "text", got)

	tr, err = New(config.TranslatorConfig{Backend: config.TranslatorCatalog, SourceLanguage: "en"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &CatalogTranslator{}, tr)

	_, err = New(config.TranslatorConfig{Backend: "carrier-pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

func TestSameLanguage(t *testing.T) {
	assert.True(t, SameLanguage("ru", "ru-RU"))
	assert.False(t, SameLanguage("ru", "en"))
	assert.False(t, SameLanguage("???", "en"))
}
