package landingpage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Input is everything the landing model is told about one page.
type Input struct {
	StrategyPrompt string
	ImageURLs      [4]string
	Description    string
	SellerData     string
	OrderEndpoint  string
}

// Asset is one image entry of a marketing strategy document.
type Asset struct {
	URL       string `json:"url"`
	Role      string `json:"role"`
	Purpose   string `json:"purpose"`
	TextImage string `json:"text-image,omitempty"`
}

// ParseAssets extracts the "assets" object of a strategy document. It returns
// false when the prompt is not a JSON object or carries no assets.
func ParseAssets(strategy string) (map[string]Asset, bool) {
	var doc struct {
		Assets map[string]Asset `json:"assets"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(strategy)), &doc); err != nil || doc.Assets == nil {
		return nil, false
	}
	return doc.Assets, true
}

// assetOrder keeps the well-known roles first so the model reads them in layout order.
var assetOrder = map[string]int{"product_main": 0, "lifestyle": 1, "detail": 2, "hero_background": 3}

// BuildUserContent assembles the user message for the landing model.
func BuildUserContent(in Input) string {
	var b strings.Builder
	b.WriteString(in.StrategyPrompt)

	if assets, ok := ParseAssets(in.StrategyPrompt); ok {
		b.WriteString("\n\n--- ASSET USAGE INSTRUCTIONS ---\n")
		keys := make([]string, 0, len(assets))
		for k := range assets {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			oi, iok := assetOrder[keys[i]]
			oj, jok := assetOrder[keys[j]]
			switch {
			case iok && jok:
				return oi < oj
			case iok != jok:
				return iok
			}
			return keys[i] < keys[j]
		})
		for _, k := range keys {
			a := assets[k]
			fmt.Fprintf(&b, "\n[%s]\n  url: %s\n  role: %s\n  purpose: %s", k, a.URL, a.Role, a.Purpose)
			if a.TextImage != "" {
				fmt.Fprintf(&b, "\n  text-image overlay: %s (render as a styled HTML/CSS promo badge overlaid on this image)", a.TextImage)
			}
		}
	} else {
		fmt.Fprintf(&b, "\n\n--- IMAGES ---\nProduct photo (main): %s\nLifestyle photo: %s\nDetail/close-up photo: %s\nHero background photo: %s",
			in.ImageURLs[0], in.ImageURLs[1], in.ImageURLs[2], in.ImageURLs[3])
	}

	if in.Description != "" {
		b.WriteString("\n\n--- PRODUCT DESCRIPTION ---\n")
		b.WriteString(in.Description)
	}
	if in.SellerData != "" {
		b.WriteString("\n\n--- SELLER DATA ---\n")
		b.WriteString(in.SellerData)
	}

	fmt.Fprintf(&b, "\n\n--- FORM SUBMISSION ---\n"+
		"The form must send a POST request to: %s\n"+
		"Request body (JSON): { \"name\": <string>, \"email\": <string>, \"phone\": <string> }\n"+
		"Use these exact input name attributes: name=\"name\", name=\"email\", name=\"phone\"\n"+
		"Do NOT write the fetch/submit JS. It will be injected separately.", in.OrderEndpoint)

	return b.String()
}

// FlattenSellerData renders form answers one per line as "key: value". Lists are
// joined with ", ", objects become "k: v" pairs and empty values are skipped.
// Keys are sorted for a stable prompt.
func FlattenSellerData(answers map[string]any) string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v, ok := displayValue(answers[k])
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", k, v)
	}
	return b.String()
}

func displayValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		return "true", x
	case float64:
		if x == 0 {
			return "", false
		}
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%f", x), "0"), "."), true
	case []any:
		if len(x) == 0 {
			return "", false
		}
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, fmt.Sprint(e))
		}
		return strings.Join(parts, ", "), true
	case map[string]any:
		if len(x) == 0 {
			return "", false
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", k, x[k]))
		}
		return strings.Join(parts, ", "), true
	default:
		return fmt.Sprint(x), true
	}
}
