package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// freeMailProviders are mailbox hosts that say nothing about the sender's company.
var freeMailProviders = map[string]bool{
	"gmail": true, "googlemail": true, "hotmail": true, "outlook": true, "live": true, "msn": true,
	"yahoo": true, "icloud": true, "me": true, "aol": true, "gmx": true, "web": true, "proton": true,
	"protonmail": true, "ziggo": true, "kpnmail": true, "planet": true, "home": true, "hetnet": true,
	"telenet": true, "skynet": true, "orange": true, "free": true, "wanadoo": true, "t-online": true,
}

// secondLevel are registry labels under a ccTLD, as in "co.uk".
var secondLevel = map[string]bool{"co": true, "com": true, "org": true, "net": true, "ac": true}

// companyFromEmail derives a display company name from the e-mail domain,
// e.g. "jan@van-dijk-transport.nl" gives "Van Dijk Transport".
func companyFromEmail(email string, locale string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return ""
	}
	labels := strings.Split(strings.ToLower(email[at+1:]), ".")
	if len(labels) < 2 {
		return ""
	}
	labels = labels[:len(labels)-1]
	if len(labels) >= 2 && secondLevel[labels[len(labels)-1]] {
		labels = labels[:len(labels)-1]
	}
	name := labels[len(labels)-1]
	if name == "" || freeMailProviders[name] {
		return ""
	}
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	return titleCase(strings.Join(words, " "), locale)
}

func titleCase(s, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return cases.Title(tag).String(s)
}
