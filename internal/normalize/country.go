package normalize

import (
	"sort"
	"strings"

	"freightdesk/internal/reference"
)

// countryNames maps folded country names in several languages to ISO 3166-1
// alpha-2 codes.
var countryNames = map[string]string{
	"netherlands": "NL", "the netherlands": "NL", "nederland": "NL", "holland": "NL", "niederlande": "NL", "pays bas": "NL",
	"belgium": "BE", "belgie": "BE", "belgique": "BE", "belgien": "BE",
	"germany": "DE", "duitsland": "DE", "deutschland": "DE", "allemagne": "DE",
	"france": "FR", "frankrijk": "FR", "frankreich": "FR",
	"luxembourg": "LU", "luxemburg": "LU",
	"united kingdom": "GB", "uk": "GB", "great britain": "GB", "england": "GB", "engeland": "GB", "verenigd koninkrijk": "GB", "royaume uni": "GB",
	"spain": "ES", "spanje": "ES", "espana": "ES", "spanien": "ES", "espagne": "ES",
	"italy": "IT", "italie": "IT", "italien": "IT", "italia": "IT",
	"poland": "PL", "polen": "PL", "pologne": "PL", "polska": "PL",
	"austria": "AT", "oostenrijk": "AT", "osterreich": "AT", "autriche": "AT",
	"switzerland": "CH", "zwitserland": "CH", "schweiz": "CH", "suisse": "CH",
	"denmark": "DK", "denemarken": "DK", "danemark": "DK",
	"sweden": "SE", "zweden": "SE", "schweden": "SE", "suede": "SE",
	"norway": "NO", "noorwegen": "NO", "norwegen": "NO", "norvege": "NO",
	"turkey": "TR", "turkije": "TR", "turkei": "TR", "turquie": "TR", "turkiye": "TR",
	"morocco": "MA", "marokko": "MA", "maroc": "MA",
	"nigeria": "NG", "ghana": "GH", "senegal": "SN", "ivory coast": "CI", "cote d ivoire": "CI",
	"united states": "US", "usa": "US", "verenigde staten": "US", "etats unis": "US",
	"united arab emirates": "AE", "uae": "AE", "verenigde arabische emiraten": "AE",
}

// phonePrefixes maps international dialling codes to countries.
var phonePrefixes = map[string]string{
	"31": "NL", "32": "BE", "49": "DE", "33": "FR", "352": "LU", "44": "GB", "34": "ES",
	"39": "IT", "48": "PL", "43": "AT", "41": "CH", "45": "DK", "46": "SE", "47": "NO",
	"90": "TR", "212": "MA", "234": "NG", "233": "GH", "221": "SN", "225": "CI", "1": "US", "971": "AE",
}

// sortedPrefixes lists phone prefixes longest first.
var sortedPrefixes = func() []string {
	out := make([]string, 0, len(phonePrefixes))
	for p := range phonePrefixes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}()

var knownCodes = func() map[string]bool {
	out := map[string]bool{}
	for _, c := range countryNames {
		out[c] = true
	}
	return out
}()

// CountryCode normalizes a country name or code to ISO alpha-2.
func CountryCode(raw string) (string, bool) {
	folded := reference.Fold(raw)
	if folded == "" {
		return "", false
	}
	if code, ok := countryNames[folded]; ok {
		return code, true
	}
	upper := strings.ToUpper(folded)
	if len(upper) == 2 && knownCodes[upper] {
		return upper, true
	}
	return "", false
}

// countryFromPhone infers a country from an international number.
func countryFromPhone(phone string) (string, bool) {
	digits := strings.TrimPrefix(phone, "+")
	if digits == phone {
		return "", false
	}
	for _, p := range sortedPrefixes {
		if strings.HasPrefix(digits, p) {
			return phonePrefixes[p], true
		}
	}
	return "", false
}

// countryFromEmail infers a country from the e-mail ccTLD.
func countryFromEmail(email string) (string, bool) {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return "", false
	}
	host := email[at+1:]
	dot := strings.LastIndexByte(host, '.')
	if dot < 0 {
		return "", false
	}
	tld := strings.ToUpper(host[dot+1:])
	if tld == "UK" {
		tld = "GB"
	}
	if len(tld) == 2 && knownCodes[tld] {
		return tld, true
	}
	return "", false
}
