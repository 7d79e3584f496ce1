package useragent

import "strings"

// UserAgent contains the facts recovered from a User-Agent header.
type UserAgent struct {
	raw string

	platform       string
	browser        string
	browserVersion string
	device         string
}

// String returns the raw user agent string.
func (ua UserAgent) String() string { return ua.raw }

// Platform returns the operating system or device platform, e.g. "Windows" or "Chrome OS".
func (ua UserAgent) Platform() string { return ua.platform }

// Browser returns the browser, crawler or client name.
func (ua UserAgent) Browser() string { return ua.browser }

// BrowserVersion returns the version reported next to the browser token.
func (ua UserAgent) BrowserVersion() string { return ua.browserVersion }

// Device returns the device class: Mobile, Tablet, Desktop or empty.
func (ua UserAgent) Device() string { return ua.device }

// IsMobile reports whether the device class is Mobile.
func (ua UserAgent) IsMobile() bool { return ua.device == DeviceMobile }

// IsTablet reports whether the device class is Tablet.
func (ua UserAgent) IsTablet() bool { return ua.device == DeviceTablet }

// IsDesktop reports whether the device class is Desktop.
func (ua UserAgent) IsDesktop() bool { return ua.device == DeviceDesktop }

// IsBot reports whether the browser is a known crawler or command-line client.
func (ua UserAgent) IsBot() bool {
	for _, bot := range rules.Bots {
		if strings.EqualFold(ua.browser, bot) {
			return true
		}
	}
	return false
}

// Parse extracts platform, browser, browser version and device class from ua.
// It is deterministic and never fails: fields it cannot recover are left empty.
func Parse(ua string) UserAgent {
	result := UserAgent{
		raw:    ua,
		device: DetectDevice(ua),
	}
	if ua == "" {
		return result
	}

	platform := parsePlatform(ua)
	result.platform, result.browser, result.browserVersion = parseBrowser(ua, platform)

	return result
}
