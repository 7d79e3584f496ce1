package useragent

import (
	"regexp"
	"slices"
)

var (
	parenGroupRe = regexp.MustCompile(`(?m)\((.*?)\)`)

	platformRe = regexp.MustCompile(`(?im)(?P<platform>BB\d+;|Android|Adr|Symbian|Sailfish|CrOS|Tizen|iPhone|iPad|iPod|Linux|(?:Open|Net|Free)BSD|Macintosh|Windows(?: Phone)?|Silk|linux-gnu|BlackBerry|PlayBook|X11|(?:New )?Nintendo (?:WiiU?|3?DS|Switch)|Xbox(?: One)?)(?: [^;]*)?(?:;|$)`)

	looseAndroidRe = regexp.MustCompile(`(?i)(?P<platform>Android)[:/ ]`)

	platformGroup = platformRe.SubexpIndex("platform")
)

// parsePlatform reads platform tokens from the first parenthesised group of ua.
func parsePlatform(ua string) string {
	var platform string

	if group := parenGroupRe.FindStringSubmatch(ua); group != nil {
		var found []string
		for _, m := range platformRe.FindAllStringSubmatch(group[1], -1) {
			if !slices.Contains(found, m[platformGroup]) {
				found = append(found, m[platformGroup])
			}
		}

		switch {
		case len(found) > 1:
			platform = found[0]
			for _, p := range rules.PlatformPriority {
				if slices.Contains(found, p) {
					platform = p
					break
				}
			}
		case len(found) == 1:
			platform = found[0]
		}
	}

	if alias, ok := rules.PlatformAliases[platform]; ok {
		return alias
	}
	if platform == "" {
		if m := looseAndroidRe.FindStringSubmatch(ua); m != nil {
			platform = m[1]
		}
	}

	return platform
}
