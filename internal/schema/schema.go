// Package schema holds the canonical, ordered catalogue of onboarding form fields.
package schema

import (
	"fmt"
	"sort"

	"github.com/and161185/onboarding/internal/errs"
	"github.com/and161185/onboarding/internal/model"
)

// Field is a single named answer in the onboarding form.
type Field struct {
	Key   string
	Label string
}

// Section groups fields under a numbered heading.
type Section struct {
	Number int
	Title  string
	Fields []Field
}

// Sections is the canonical form layout. Order here is the order used by exports and listings.
var Sections = []Section{
	{Number: 0, Title: "Møte", Fields: []Field{
		{"approvalDate", "Møtedato"},
	}},
	{Number: 1, Title: "Bedriftsinformasjon", Fields: []Field{
		{"companyName", "Juridisk firmanavn"},
		{"orgNumber", "Organisasjonsnummer"},
		{"address", "Adresse"},
		{"contactName", "Kontaktperson, navn"},
		{"contactPhone", "Kontaktperson, mobil"},
		{"contactEmail", "Kontaktperson, e-post"},
		{"invoiceEmail", "Faktura e-post"},
		{"ehf", "EHF"},
		{"poReference", "Referanse/PO"},
		{"website", "Hjemmeside"},
		{"facebook", "Facebook-side"},
		{"instagram", "Instagram-konto"},
		{"tiktok", "TikTok-konto"},
		{"snapchat", "Snapchat-konto"},
		{"linkedin", "LinkedIn-profil"},
	}},
	{Number: 2, Title: "Mål & prioriteringer", Fields: []Field{
		{"mainGoals", "Viktigste mål de første 90 dagene"},
		{"topProducts", "Topp 3 prioriterte produktkategorier"},
		{"seasonalCampaigns", "Sesongkampanjer og viktige datoer"},
	}},
	{Number: 3, Title: "Tilganger", Fields: []Field{
		{"shopifyAccess", "Shopify admin-tilgang"},
		{"shopifyStore", "Link til Shopify-store"},
		{"googleAdsAccess", "Google Ads-konto"},
		{"googleMerchantAccess", "Google Merchant Center"},
		{"googleSearchConsoleAccess", "Google Search Console"},
		{"googleTagManagerAccess", "Google Tag Manager"},
		{"googleAnalyticsAccess", "Google Analytics 4"},
		{"googleBusinessAccess", "Google Business Profile"},
		{"metaBusinessManagerId", "Meta Business Manager ID"},
		{"metaAccessNotes", "Meta, notater om tilgang"},
		{"emailPlatform", "E-postplattform"},
		{"emailPlatformAccessNotes", "E-postplattform, notater om tilgang"},
		{"dnsProvider", "DNS-leverandør"},
		{"dnsAccessNotes", "DNS-tilgang"},
	}},
	{Number: 4, Title: "Kreative ressurser", Fields: []Field{
		{"imagesAvailable", "Tilgjengelige bilder"},
		{"videoAvailable", "Tilgjengelig video"},
		{"logoFiles", "Logo-filer"},
		{"brandColors", "Fargekoder"},
		{"fonts", "Typografi/fonter"},
		{"brandManual", "Brand manual"},
		{"toneOfVoiceNotes", "Tone-of-voice"},
	}},
	{Number: 5, Title: "E-postmarkedsføring", Fields: []Field{
		{"senderName", "Avsendernavn"},
		{"senderEmail", "Avsender-e-post"},
		{"supportEmail", "Support-e-post"},
		{"existingLists", "Eksisterende lister"},
		{"consentStatus", "Samtykkestatus"},
		{"emailDesignPreferences", "E-postdesignpreferanser"},
	}},
	{Number: 6, Title: "Sporing", Fields: []Field{
		{"usingGTM", "Google Tag Manager i bruk"},
		{"metaPixelInstalled", "Meta-piksel installert"},
		{"capiActive", "CAPI aktiv"},
		{"googleAdsConversions", "Google Ads konverteringer"},
		{"emailTracking", "E-post e-commerce sporing"},
		{"customTracking", "Custom tracking"},
	}},
	{Number: 7, Title: "Annonseringsbudsjett", Fields: []Field{
		{"metaBudget", "Meta Ads (kr/mnd)"},
		{"googleBudget", "Google Ads (kr/mnd)"},
		{"linkedinBudget", "LinkedIn Ads (kr/mnd)"},
		{"snapchatBudget", "Snapchat Ads (kr/mnd)"},
		{"tiktokBudget", "TikTok Ads (kr/mnd)"},
		{"budgetDistribution", "Fordeling"},
	}},
	{Number: 8, Title: "Ekstra notater", Fields: []Field{
		{"extraNotes", "Ekstra notater"},
	}},
}

var keys []string

var byKey = map[string]Field{}

func init() {
	for _, s := range Sections {
		for _, f := range s.Fields {
			if _, dup := byKey[f.Key]; dup {
				panic("schema: duplicate field " + f.Key)
			}
			byKey[f.Key] = f
			keys = append(keys, f.Key)
		}
	}
}

// Keys returns every field key in canonical order.
func Keys() []string { return append([]string(nil), keys...) }

// Known reports whether key is part of the schema.
func Known(key string) bool {
	_, ok := byKey[key]
	return ok
}

// Lookup returns the field definition for key.
func Lookup(key string) (Field, bool) {
	f, ok := byKey[key]
	return f, ok
}

// Validate checks that every key of d belongs to the schema.
// Unknown keys are reported sorted so the error text is stable.
func Validate(d model.FormData) error {
	var unknown []string
	for k := range d {
		if !Known(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: %v", errs.ErrUnknownField, unknown)
}
