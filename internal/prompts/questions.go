package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Question is one field of the seller detail form.
type Question struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Type         string   `json:"type"`
	Required     bool     `json:"required"`
	Placeholder  string   `json:"placeholder,omitempty"`
	Suggestions  []string `json:"suggestions,omitempty"`
	Options      []string `json:"options,omitempty"`
	DefaultValue any      `json:"defaultValue,omitempty"`
	SingleSelect bool     `json:"singleSelect,omitempty"`
}

//go:embed questions.yaml
var catalogYAML []byte

type language struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

type labels struct {
	LPLanguage            string   `yaml:"lp_language"`
	Price                 string   `yaml:"price"`
	PricePlaceholder      string   `yaml:"price_placeholder"`
	Currency              string   `yaml:"currency"`
	Delivery              string   `yaml:"delivery"`
	DeliverySuggestions   []string `yaml:"delivery_suggestions"`
	ExtraInfo             string   `yaml:"extra_info"`
	ExtraInfoPlaceholder  string   `yaml:"extra_info_placeholder"`
	Warranty              string   `yaml:"warranty"`
	WarrantyPlaceholder   string   `yaml:"warranty_placeholder"`
	Returns               string   `yaml:"returns"`
	ReturnsPlaceholder    string   `yaml:"returns_placeholder"`
	SalesHooks            string   `yaml:"sales_hooks"`
	SalesHooksSuggestions []string `yaml:"sales_hooks_suggestions"`
	SocialLinks           string   `yaml:"social_links"`
}

type catalog struct {
	Languages  []language        `yaml:"languages"`
	Currencies []string          `yaml:"currencies"`
	Social     []string          `yaml:"social"`
	Fallback   string            `yaml:"fallback"`
	Labels     map[string]labels `yaml:"labels"`
}

var (
	catalogOnce sync.Once
	loaded      catalog
)

func loadCatalog() catalog {
	catalogOnce.Do(func() {
		if err := yaml.Unmarshal(catalogYAML, &loaded); err != nil {
			panic(fmt.Sprintf("prompts: invalid question catalog: %v", err))
		}
		if _, ok := loaded.Labels[loaded.Fallback]; !ok {
			panic("prompts: question catalog has no labels for fallback language " + loaded.Fallback)
		}
	})
	return loaded
}

// LanguageCode reduces a locale like "uk-UA" to its lowercase language part.
func LanguageCode(locale string) string {
	lang, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(locale)), "-")
	lang, _, _ = strings.Cut(lang, "_")
	return lang
}

// FixedQuestions returns the seller questions every listing needs, localized for locale.
// Unknown locales get English labels, English as landing language and USD.
func FixedQuestions(locale string) []Question {
	c := loadCatalog()
	lang := LanguageCode(locale)

	t, ok := c.Labels[lang]
	if !ok {
		t = c.Labels[c.Fallback]
	}

	defaultLanguage, defaultCurrency := "English", "USD"
	names := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		names = append(names, l.Name)
		if l.Code == lang {
			defaultLanguage, defaultCurrency = l.Name, l.Currency
		}
	}

	return []Question{
		{ID: "lp_language", Label: t.LPLanguage, Type: "chips", Required: true, SingleSelect: true, Suggestions: names, DefaultValue: defaultLanguage},
		{ID: "price", Label: t.Price, Type: "number", Required: true, Placeholder: t.PricePlaceholder},
		{ID: "currency", Label: t.Currency, Type: "chips", Required: true, SingleSelect: true, Suggestions: append([]string(nil), c.Currencies...), DefaultValue: defaultCurrency},
		{ID: "delivery", Label: t.Delivery, Type: "chips", Required: true, Suggestions: t.DeliverySuggestions},
		{ID: "extra_info", Label: t.ExtraInfo, Type: "text", Placeholder: t.ExtraInfoPlaceholder},
		{ID: "warranty", Label: t.Warranty, Type: "text", Required: true, Placeholder: t.WarrantyPlaceholder},
		{ID: "returns", Label: t.Returns, Type: "text", Required: true, Placeholder: t.ReturnsPlaceholder},
		{ID: "sales_hooks", Label: t.SalesHooks, Type: "chips_with_input", Suggestions: t.SalesHooksSuggestions},
		{ID: "social_links", Label: t.SocialLinks, Type: "chips_with_input", Required: true, Suggestions: append([]string(nil), c.Social...)},
	}
}
