package useragent

import "strings"

// Device classes.
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
)

// DetectDevice classifies ua by case-insensitive keyword search.
// Mobile takes precedence over Tablet; any other non-empty string is Desktop.
func DetectDevice(ua string) string {
	if ua == "" {
		return ""
	}

	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "mobile"):
		return DeviceMobile
	case strings.Contains(lower, "tablet"), strings.Contains(lower, "ipad"):
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}
