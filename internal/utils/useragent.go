package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, desktop
	OS         string `json:"os"`          // Android 12, Windows 10, etc.
	Browser    string `json:"browser"`     // Chrome, Safari, Firefox, etc.
	BrowserVer string `json:"browser_ver"` // Browser version
	IsBot      bool   `json:"is_bot"`      // Whether it's a bot/crawler
	Raw        string `json:"raw"`         // Original user agent string
}

// ParseUserAgent parses a User-Agent string and extracts device
// information for audit logging
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
			Raw:        userAgent,
		}
	}

	parser := ua.New(userAgent)
	browser, browserVer := parser.Browser()

	info := DeviceInfo{
		DeviceType: "desktop",
		OS:         osString(parser),
		Browser:    browser,
		BrowserVer: browserVer,
		IsBot:      parser.Bot(),
		Raw:        userAgent,
	}
	if parser.Mobile() {
		info.DeviceType = "mobile"
	}
	if info.Browser == "" {
		info.Browser = "Unknown"
	}

	return info
}

func osString(parser *ua.UserAgent) string {
	osInfo := parser.OSInfo()
	if osInfo.Name == "" {
		return "Unknown"
	}
	return strings.TrimSpace(osInfo.Name + " " + osInfo.Version)
}
