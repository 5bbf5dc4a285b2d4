// Package useragent classifies raw User-Agent strings into the browser,
// operating system and device class stored on visitor sessions.
package useragent

import (
	"strings"
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
)

// Device classes stored on sessions.
const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
)

// Classification is the session-facing result of parsing a User-Agent.
type Classification struct {
	Browser      string
	OS           string
	DeviceFamily string
	DeviceType   string
}

var (
	parser     *uaparser.Parser
	parserOnce sync.Once
)

func getParser() *uaparser.Parser {
	parserOnce.Do(func() {
		parser = uaparser.NewFromSaved()
	})
	return parser
}

// Classify parses a User-Agent string into a Classification.
// An empty User-Agent yields Unknown browser/OS and a desktop device class.
func Classify(userAgent string) Classification {
	if strings.TrimSpace(userAgent) == "" {
		return Classification{
			Browser:      "Unknown",
			OS:           "Unknown",
			DeviceFamily: "Other",
			DeviceType:   DeviceDesktop,
		}
	}

	client := getParser().Parse(userAgent)

	return Classification{
		Browser:      client.UserAgent.ToString(),
		OS:           client.Os.ToString(),
		DeviceFamily: client.Device.Family,
		DeviceType:   deviceTypeFor(client.Device.Family),
	}
}

// deviceTypeFor maps a parsed device family to the stored device class.
// Rule table:
//
//	iPhone, iPad               -> mobile
//	any other named family     -> mobile
//	"Other" (generic/unparsed) -> desktop
//
// A recognized non-phone family also counts as mobile. Changing the rule
// would shift the historical device breakdown, so it stays as collected.
func deviceTypeFor(family string) string {
	if family == "iPhone" || family == "iPad" {
		return DeviceMobile
	}
	if family != "Other" {
		return DeviceMobile
	}
	return DeviceDesktop
}
