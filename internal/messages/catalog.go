package messages

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Keys every catalogue must define.
const (
	Greeting         = "greeting"
	Help             = "help"
	About            = "about"
	ChooseOption     = "choose_option"
	ChooseQuality    = "choose_quality"
	ChooseLanguage   = "choose_language"
	NoQualities      = "no_qualities"
	NoLanguages      = "no_languages"
	MissingSource    = "missing_source"
	BackToOptions    = "back_to_options"
	BackNoSource     = "back_no_source"
	Preparing        = "preparing"
	Delivered        = "delivered"
	NotAvailable     = "not_available"
	ProviderError    = "provider_error"
	RenderError      = "render_error"
	TransmitError    = "transmit_error"
	TooLarge         = "too_large"
	Busy             = "busy"
	ExportDenied     = "export_denied"
	ExportCaption    = "export_caption"
	ExportFailed     = "export_failed"
	InternalError    = "internal_error"
	ChatUnconfigured = "chat_unconfigured"
	ChatEcho         = "chat_echo"
	ChatIncomplete   = "chat_incomplete"
	ChatHTTP         = "chat_http"
	ChatNetwork      = "chat_network"
	ChatExhausted    = "chat_exhausted"
)

var requiredKeys = []string{
	Greeting, Help, About, ChooseOption, ChooseQuality, ChooseLanguage, NoQualities, NoLanguages,
	MissingSource, BackToOptions, BackNoSource, Preparing, Delivered, NotAvailable, ProviderError,
	RenderError, TransmitError, TooLarge, Busy, ExportDenied, ExportCaption, ExportFailed, InternalError,
	ChatUnconfigured, ChatEcho, ChatIncomplete, ChatHTTP, ChatNetwork, ChatExhausted,
}

// Catalog maps message keys to templates.
type Catalog struct {
	texts map[string]string
}

// Default returns the embedded catalogue.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded message catalog: %v", err))
	}
	return c
}

// Parse decodes a YAML catalogue and checks that every key is present.
func Parse(data []byte) (*Catalog, error) {
	texts := map[string]string{}
	if err := yaml.Unmarshal(data, &texts); err != nil {
		return nil, fmt.Errorf("decode message catalog: %w", err)
	}
	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(texts[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("message catalog missing keys: %s", strings.Join(missing, ", "))
	}
	return &Catalog{texts: texts}, nil
}

// Text renders key with {placeholder} substitutions given as name, value
// pairs. Unknown keys render as the key itself.
func (c *Catalog) Text(key string, pairs ...string) string {
	text, ok := c.texts[key]
	if !ok {
		return key
	}
	if len(pairs) < 2 {
		return text
	}
	replacements := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		replacements = append(replacements, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(replacements...).Replace(text)
}
