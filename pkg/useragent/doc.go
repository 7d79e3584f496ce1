// Package useragent turns a raw HTTP User-Agent header into the four facts the
// traffic log stores for every request: platform, browser, browser version and
// device class.
//
// User-Agent strings are an ad-hoc, vendor-inconsistent format full of
// deliberate impersonation (Chrome claims to be Safari, everything claims to be
// Mozilla), so a single expression cannot recover them. Parse runs a staged
// pipeline instead:
//
//	┌──────────┐   ┌────────────────────┐   ┌────────────────────┐   ┌──────────────────┐
//	│  device  │──▶│ platform (parens)  │──▶│ browser tokens     │──▶│ disambiguation   │
//	│ keywords │   │ + priority + alias │   │ + generic fallback │   │ cascade          │
//	└──────────┘   └────────────────────┘   └────────────────────┘   └──────────────────┘
//
//  1. Device class is a case-insensitive substring check: "Mobile", then
//     "Tablet"/"iPad", then Desktop for any other non-empty string.
//  2. Platform tokens are read from the first parenthesised group. Ties are
//     broken by a fixed priority list and aliases are normalised
//     (X11 and linux-gnu become Linux, CrOS becomes Chrome OS).
//  3. Browser tokens and their versions are collected from the whole string. If
//     none are recognised a generic "token/version" shape is accepted, as long as
//     the string does not start with Mozilla.
//  4. An ordered set of special cases revises the result: alias remapping
//     (OPR is Opera, Edg is Edge), Kindle and Silk, Nintendo, PlayStation,
//     Puffin platform suffixes, Internet Explorer compatibility mode and
//     WebKit-only strings.
//
// The vocabulary and priority tables live in rules.yaml, embedded at build time
// and decoded once when the package is initialised.
//
// # Usage
//
//	ua := useragent.Parse(r.UserAgent())
//
//	log.Printf("platform=%s browser=%s/%s device=%s",
//		ua.Platform(), ua.Browser(), ua.BrowserVersion(), ua.Device())
//
//	if ua.IsBot() {
//		// crawler or command-line client
//	}
//
// Parse never fails. Malformed or empty input yields empty fields.
package useragent
