// Package checklist describes what a client should prepare before the onboarding meeting.
// It backs the public share page and the CLI checklist command.
package checklist

import (
	"fmt"
	"io"
	"strings"
)

// Contact is where the client sends access grants and questions.
const Contact = "media@skardigital.no"

// Item is one thing to prepare, with an optional hint.
type Item struct {
	Text string
	Hint string
}

// Group is a titled list of items, such as one platform.
type Group struct {
	Title string
	Items []Item
	Note  string
}

// Section is a numbered part of the checklist.
type Section struct {
	Number int
	Title  string
	Intro  string
	Groups []Group
}

// Sections is the customer checklist in display order.
var Sections = []Section{
	{Number: 1, Title: "Bedriftsinformasjon", Groups: []Group{{Items: []Item{
		{Text: "Juridisk firmanavn og organisasjonsnummer"},
		{Text: "Kontaktinformasjon", Hint: "Navn, mobil og e-post til primærkontakt(er)"},
		{Text: "Fakturainformasjon", Hint: "E-post for faktura, EHF-mulighet, referanse/PO"},
		{Text: "Offisielle bedriftsprofiler", Hint: "Hjemmeside, Facebook, Instagram, TikTok, Snapchat, LinkedIn (hvis relevant)"},
	}}}},
	{Number: 2, Title: "Mål & prioriteringer", Groups: []Group{{Items: []Item{
		{Text: "Viktigste mål de første 90 dagene", Hint: "Øke netthandel, ROAS, trafikk, branding, e-postvekst?"},
		{Text: "Topp 3 prioriterte produktkategorier", Hint: "Hvilke produkter skal vi fokusere på først?"},
		{Text: "Sesongkampanjer og viktige datoer", Hint: "Dress-sesong, vinter, back-to-work, etc."},
	}}}},
	{
		Number: 3,
		Title:  "E-postmarketing & nyhetsbrev",
		Intro:  "Først må vi vite om du allerede bruker en e-postmarkedsføringsløsning.",
		Groups: []Group{{
			Title: "Bruker du en software for e-postmarketing eller nyhetsbrev?",
			Items: []Item{
				{Text: "Ja, vi bruker allerede en løsning", Hint: "Hvilken? (f.eks. Klaviyo, Mailchimp, Brevo, ConvertKit, andre)"},
				{Text: "Nei, vi ønsker å sette opp noe nytt"},
			},
			Note: "Hvis du bruker en løsning, trenger vi tilgang for å integrere med Shopify og tilknyttet sporing. Vi kan også bistå med oppsett av en ny løsning.",
		}},
	},
	{
		Number: 4,
		Title:  "Tilganger – kritisk for oppstart",
		Intro:  "Vi trenger tilgang til følgende plattformer. Alle tilganger kan gis til: " + Contact,
		Groups: []Group{
			{Title: "Shopify", Items: []Item{
				{Text: "Admin-tilgang til Shopify-butikken"},
			}, Note: "Trengs for e-postintegrasjon, pixel-sjekk, sporing og Google Merchant Center"},
			{Title: "Google", Items: []Item{
				{Text: "Google Ads-konto"},
				{Text: "Google Merchant Center"},
				{Text: "Google Search Console"},
				{Text: "Google Analytics 4"},
				{Text: "Google Tag Manager (hvis brukt)"},
				{Text: "Google Business Profile"},
			}, Note: "Rolle: Administrator"},
			{Title: "Meta (Facebook & Instagram)", Items: []Item{
				{Text: "Meta Business Manager-tilgang"},
				{Text: "Facebook-side og Instagram-konto"},
				{Text: "Meta Ads-konto og Meta Pixel"},
				{Text: "Produktkatalog"},
			}, Note: "Tilgangsnivå: Admin"},
			{Title: "E-postmarkedsføring", Items: []Item{
				{Text: "Administrator-tilgang til valgt e-postplattform"},
				{Text: "API-nøkkel for integrasjon (hvis aktuelt)"},
			}, Note: "Vi trenger tilgang for å koble Shopify, Facebook og Google-sporing"},
			{Title: "Domene / DNS", Items: []Item{
				{Text: "Tilgang til domenekontrollpanel"},
			}, Note: "For DKIM, SPF, CNAME (f.eks. Domeneshop, GoDaddy, Cloudflare)"},
		},
	},
	{
		Number: 5,
		Title:  "Kreative ressurser",
		Intro:  "For å lage annonser og kreativt materiale trenger vi:",
		Groups: []Group{
			{Title: "Bilder", Items: []Item{{Text: "Produktbilder, lifestyle-bilder, bilder fra butikk"}}},
			{Title: "Video", Items: []Item{{Text: "Videomateriale fra Instagram, behind-the-scenes, brand-videoer"}}},
			{Title: "Logo og grafisk profil", Items: []Item{{Text: "Logo i PNG & SVG, fargekoder, typografi, brand manual (hvis den finnes)"}}},
		},
	},
	{Number: 6, Title: "Annonseringsbudsjett", Groups: []Group{{Items: []Item{
		{Text: "Månedlig budsjett for Meta Ads og Google Ads"},
		{Text: "Ønsket fordeling", Hint: "Branding vs Performance? Retargeting vs cold traffic?"},
	}}}},
}

// Intro is the greeting shown above the checklist.
func Intro(clientName string) string {
	return "Dette dokumentet gir deg en oversikt over informasjon og tilganger vi trenger for å sette opp " +
		"annonsering, e-postmarketing, sporing og løpende drift for " + clientName + ".\n" +
		"Gå gjerne gjennom listen før vårt oppstartsmøte, så kan vi gjøre gjennomgangen mer effektiv."
}

// NextSteps closes the checklist.
const NextSteps = "Vi går gjennom dette skjemaet sammen i oppstartsmøtet. Ta gjerne kontakt hvis du har spørsmål på forhånd."

// WriteText renders the checklist as plain text.
func WriteText(w io.Writer, clientName string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "OPPSTARTSSKJEMA – %s – Skar Digital\n\n%s\n", clientName, Intro(clientName))
	for _, s := range Sections {
		fmt.Fprintf(&b, "\n%d. %s\n", s.Number, strings.ToUpper(s.Title))
		if s.Intro != "" {
			fmt.Fprintf(&b, "%s\n", s.Intro)
		}
		for _, g := range s.Groups {
			if g.Title != "" {
				fmt.Fprintf(&b, "\n  %s\n", g.Title)
			}
			for _, it := range g.Items {
				fmt.Fprintf(&b, "  [ ] %s\n", it.Text)
				if it.Hint != "" {
					fmt.Fprintf(&b, "      %s\n", it.Hint)
				}
			}
			if g.Note != "" {
				fmt.Fprintf(&b, "  %s\n", g.Note)
			}
		}
	}
	fmt.Fprintf(&b, "\nNESTE STEG\n%s\nKontakt: %s\n", NextSteps, Contact)

	_, err := io.WriteString(w, b.String())
	return err
}
