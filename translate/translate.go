// Package translate formats user-facing messages for the kindA simulator
// in the language of the host locale.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported languages, the first is the fallback.
var supported = []language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
}

var printer *message.Printer

func init() {
	loadCatalog()

	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("kinda: locale: %v", err)
	}

	var tags []language.Tag
	for _, name := range locales {
		tags = append(tags, language.Make(name))
	}

	_, index, _ := language.NewMatcher(supported).Match(tags...)
	printer = message.NewPrinter(supported[index])
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
