// Package i18n resolves user-facing message keys into localized text.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	ru_translations "github.com/go-playground/validator/v10/translations/ru"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

const (
	LangEN = "en"
	LangRU = "ru"
)

// Translator looks up message keys in the embedded catalog.
// Unknown keys are returned unchanged.
type Translator struct {
	uni         *ut.UniversalTranslator
	defaultLang string
}

// New loads the embedded catalog for every supported language
func New(defaultLang string) (*Translator, error) {
	if defaultLang == "" {
		defaultLang = LangEN
	}

	fallback := en.New()
	uni := ut.New(fallback, fallback, ru.New())

	entries, err := fs.ReadDir(catalogFS, "catalog")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	for _, entry := range entries {
		lang := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		trans, found := uni.GetTranslator(lang)
		if !found {
			return nil, fmt.Errorf("unsupported catalog language %q", lang)
		}
		if err := loadCatalog(trans, path.Join("catalog", entry.Name())); err != nil {
			return nil, err
		}
	}

	return &Translator{uni: uni, defaultLang: defaultLang}, nil
}

// MustNew is New for static initialization
func MustNew(defaultLang string) *Translator {
	t, err := New(defaultLang)
	if err != nil {
		panic(err)
	}
	return t
}

func loadCatalog(trans ut.Translator, file string) error {
	raw, err := catalogFS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	messages := make(map[string]string)
	if err := yaml.Unmarshal(raw, &messages); err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}

	for key, text := range messages {
		if err := trans.Add(key, text, true); err != nil {
			return fmt.Errorf("failed to add %s/%s: %w", trans.Locale(), key, err)
		}
	}
	return nil
}

// Translate renders key in lang, substituting positional {0}..{n} args
func (t *Translator) Translate(lang, key string, args ...string) string {
	trans := t.translator(lang)
	text, err := trans.T(key, args...)
	if err != nil || text == "" {
		return key
	}
	return text
}

// Normalize reduces an Accept-Language style value to a supported language code
func (t *Translator) Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, ",;-_"); i > 0 {
		lang = lang[:i]
	}
	if _, found := t.uni.GetTranslator(lang); found && lang != "" {
		return lang
	}
	return t.defaultLang
}

// Locale exposes the locale rules for lang (number and date formatting)
func (t *Translator) Locale(lang string) locales.Translator {
	return t.translator(lang)
}

func (t *Translator) translator(lang string) ut.Translator {
	trans, found := t.uni.GetTranslator(t.Normalize(lang))
	if !found {
		trans, _ = t.uni.GetTranslator(t.defaultLang)
	}
	return trans
}

// RegisterValidator installs the validator's default messages for every language
func (t *Translator) RegisterValidator(v *validator.Validate) error {
	enTrans, _ := t.uni.GetTranslator(LangEN)
	if err := en_translations.RegisterDefaultTranslations(v, enTrans); err != nil {
		return fmt.Errorf("failed to register en validator translations: %w", err)
	}
	ruTrans, _ := t.uni.GetTranslator(LangRU)
	if err := ru_translations.RegisterDefaultTranslations(v, ruTrans); err != nil {
		return fmt.Errorf("failed to register ru validator translations: %w", err)
	}
	return nil
}

// TranslateValidation maps validator errors to field -> localized message
func (t *Translator) TranslateValidation(lang string, err error) map[string]string {
	fields := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fields
	}
	trans := t.translator(lang)
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(trans)
	}
	return fields
}
