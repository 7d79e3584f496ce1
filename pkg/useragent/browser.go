package useragent

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	browserRe = regexp.MustCompile(`(?i)(?P<browser>Camino|Kindle( Fire)?|Firefox|Iceweasel|IceCat|Safari|MSIE|Trident|AppleWebKit|TizenBrowser|(?:Headless)?Chrome|YaBrowser|Vivaldi|IEMobile|Opera|OPR|Silk|Midori|(?-i:Edge)|EdgA?|CriOS|UCBrowser|Puffin|OculusBrowser|SamsungBrowser|SailfishBrowser|XiaoMi/MiuiBrowser|YaApp_Android|Whale|Baiduspider|Applebot|Facebot|Googlebot|YandexBot|bingbot|Lynx|Version|Wget|curl|ChatGPT-User|GPTBot|OAI-SearchBot|Valve Steam Tenfoot|Mastodon|NintendoBrowser|PLAYSTATION (?:\d|Vita)+)\)?;?(?:[:/ ](?P<version>[0-9A-Z.]+)|/[A-Z]*)`)

	// Applied only when the string does not start with "Mozilla".
	genericRe = regexp.MustCompile(`(?i)^(?P<browser>[A-Z0-9\-]+)(?:[/:](?P<version>[0-9A-Z.]+))?`)

	rvRe          = regexp.MustCompile(`(?i)rv:(?P<version>[0-9A-Z.]+)`)
	playstationRe = regexp.MustCompile(`(?i)playstation \d`)
	nonDigitRe    = regexp.MustCompile(`\D`)

	browserGroup = browserRe.SubexpIndex("browser")
	versionGroup = browserRe.SubexpIndex("version")
)

// token is one browser identifier with the version that followed it, if any.
type token struct {
	name    string
	version string
}

type tokens []token

func scanTokens(ua string) tokens {
	matches := browserRe.FindAllStringSubmatch(ua, -1)
	out := make(tokens, 0, len(matches))
	for _, m := range matches {
		out = append(out, token{name: m[browserGroup], version: m[versionGroup]})
	}
	return out
}

// find looks the search terms up in order, comparing case-insensitively, and
// returns the index of the first token found and the term that matched it.
func (t tokens) find(terms ...string) (int, string, bool) {
	for _, term := range terms {
		for i, tok := range t {
			if strings.EqualFold(tok.name, term) {
				return i, term, true
			}
		}
	}
	return 0, "", false
}

// index returns the position of the token named exactly name, or 0.
func (t tokens) index(name string) int {
	for i, tok := range t {
		if tok.name == name {
			return i
		}
	}
	return 0
}

func (t tokens) alias() (int, string, bool) {
	for _, a := range rules.BrowserAliases {
		if i, _, ok := t.find(a.Token); ok {
			return i, a.Name, true
		}
	}
	return 0, "", false
}

// parseBrowser resolves browser and version and may revise platform.
func parseBrowser(ua, platform string) (string, string, string) {
	found := scanTokens(ua)
	if len(found) == 0 {
		if browser, version, ok := genericBrowser(ua); ok {
			return platform, browser, version
		}
		return platform, "", ""
	}

	var rv string
	if m := rvRe.FindStringSubmatch(ua); m != nil {
		rv = m[1]
	}

	browser, version := found[0].name, found[0].version

	if i, name, ok := found.alias(); ok {
		version = ""
		if startsWithDigit(found[i].version) {
			version = found[i].version
		}
		return platform, name, version
	}

	if _, _, ok := found.find("Playstation Vita"); ok {
		return "PlayStation Vita", "Browser", version
	}

	if i, term, ok := found.find("Kindle Fire", "Silk"); ok {
		browser = "Kindle"
		if term == "Silk" {
			browser = "Silk"
		}
		version = found[i].version
		if !startsWithDigit(version) {
			version = found[found.index("Version")].version
		}
		return "Kindle Fire", browser, version
	}

	if i, _, ok := found.find("NintendoBrowser"); ok || platform == "Nintendo 3DS" {
		return platform, "NintendoBrowser", found[i].version
	}

	if i, _, ok := found.find("Kindle"); ok {
		return "Kindle", found[i].name, found[i].version
	}

	if i, _, ok := found.find("Opera"); ok {
		if j, _, ok := found.find("Version"); ok {
			i = j
		}
		return platform, "Opera", found[i].version
	}

	if i, _, ok := found.find("Puffin"); ok {
		version = found[i].version
		if len(version) > 3 {
			suffix := version[len(version)-2:]
			if isUpper(suffix) {
				version = version[:len(version)-2]
				if p, ok := rules.PuffinFlags[suffix]; ok {
					platform = p
				}
			}
		}
		return platform, "Puffin", version
	}

	if i, term, ok := found.find(rules.NamedBrowsers...); ok {
		return platform, term, found[i].version
	}

	if rv != "" && rv != "0" {
		if _, _, ok := found.find("Trident"); ok {
			return platform, "MSIE", rv
		}
	}

	if browser == "AppleWebKit" {
		return webkitBrowser(found, platform, version)
	}

	for _, tok := range found {
		if playstationRe.MatchString(tok.name) {
			return "PlayStation " + nonDigitRe.ReplaceAllString(tok.name, ""), "NetFront", version
		}
	}

	return platform, browser, version
}

// webkitBrowser disambiguates strings whose first token is a bare AppleWebKit.
func webkitBrowser(found tokens, platform, version string) (string, string, string) {
	browser := "AppleWebKit"

	switch {
	case platform == "Android":
		browser = "Android Browser"
	case strings.HasPrefix(platform, "BB"):
		browser = "BlackBerry Browser"
		platform = "BlackBerry"
	case platform == "BlackBerry" || platform == "PlayBook":
		browser = "BlackBerry Browser"
	default:
		if i, term, ok := found.find("Safari"); ok {
			browser, version = term, found[i].version
		} else if i, term, ok := found.find("TizenBrowser"); ok {
			browser, version = term, found[i].version
		} else {
			last := found[len(found)-1]
			browser, version = last.name, last.version
		}
	}

	if i, _, ok := found.find("Version"); ok {
		version = found[i].version
	}

	return platform, browser, version
}

func genericBrowser(ua string) (string, string, bool) {
	if strings.HasPrefix(strings.ToLower(ua), "mozilla") {
		return "", "", false
	}
	m := genericRe.FindStringSubmatch(ua)
	if m == nil {
		return "", "", false
	}
	return m[genericRe.SubexpIndex("browser")], m[genericRe.SubexpIndex("version")], true
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func isUpper(s string) bool {
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return s != ""
}
