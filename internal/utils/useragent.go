package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// ClientInfo is the device summary stored with audit entries
type ClientInfo struct {
	DeviceType string `json:"device_type"`
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	BrowserVer string `json:"browser_ver,omitempty"`
	IsBot      bool   `json:"is_bot"`
}

var tabletMarkers = []string{"ipad", "tablet", "kindle", "sm-t", "nexus 7", "nexus 9", "nexus 10"}

// ParseClient summarises a User-Agent header.
func ParseClient(userAgent string) ClientInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return ClientInfo{DeviceType: "unknown", OS: "Unknown", Browser: "Unknown"}
	}

	p := ua.New(userAgent)
	info := ClientInfo{
		DeviceType: "desktop",
		OS:         "Unknown",
		IsBot:      p.Bot(),
	}

	if p.Mobile() {
		info.DeviceType = "mobile"
		lower := strings.ToLower(userAgent)
		for _, m := range tabletMarkers {
			if strings.Contains(lower, m) {
				info.DeviceType = "tablet"
				break
			}
		}
	}

	if os := p.OSInfo(); os.Name != "" {
		info.OS = strings.TrimSpace(os.Name + " " + os.Version)
	}

	info.Browser, info.BrowserVer = p.Browser()
	if info.Browser == "" {
		info.Browser = "Unknown"
	}
	return info
}
