// Package referrers classifies referrer URLs into traffic sources.
package referrers

import (
	"embed"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Marketing channels a referrer can belong to.
const (
	ChannelDirect   = "direct"
	ChannelSearch   = "search"
	ChannelSocial   = "social"
	ChannelEmail    = "email"
	ChannelReferral = "referral"
)

// Source identifies where a visit came from.
type Source struct {
	Name    string
	Channel string
}

//go:embed sources.yml
var sourcesFile embed.FS

type knownSource struct {
	name    string
	channel string
}

var (
	known     map[string]knownSource
	knownOnce sync.Once
)

func knownSources() map[string]knownSource {
	knownOnce.Do(func() {
		known = make(map[string]knownSource)

		data, err := sourcesFile.ReadFile("sources.yml")
		if err != nil {
			fmt.Printf("Error reading sources.yml: %v\n", err)
			return
		}

		var byChannel map[string]map[string]string
		if err := yaml.Unmarshal(data, &byChannel); err != nil {
			fmt.Printf("Error parsing sources.yml: %v\n", err)
			return
		}

		for channel, hosts := range byChannel {
			for host, name := range hosts {
				known[strings.ToLower(host)] = knownSource{name: name, channel: channel}
			}
		}
	})
	return known
}

// Classify maps a raw referrer URL to a traffic source. An empty or
// unparseable referrer counts as direct traffic; an unknown hostname is a
// generic referral labeled with the hostname itself.
func Classify(referrerURL string) Source {
	if strings.TrimSpace(referrerURL) == "" {
		return Source{Name: "Direct", Channel: ChannelDirect}
	}

	parsed, err := url.Parse(referrerURL)
	if err != nil || parsed.Hostname() == "" {
		return Source{Name: "Direct", Channel: ChannelDirect}
	}

	hostname := strings.ToLower(parsed.Hostname())

	if src, ok := lookupHost(hostname); ok {
		return Source{Name: src.name, Channel: src.channel}
	}

	return Source{Name: FriendlyName(hostname), Channel: ChannelReferral}
}

func lookupHost(hostname string) (knownSource, bool) {
	sources := knownSources()

	if src, ok := sources[hostname]; ok {
		return src, true
	}

	if strings.HasPrefix(hostname, "www.") {
		if src, ok := sources[hostname[4:]]; ok {
			return src, true
		}
		hostname = hostname[4:]
	}

	// Subdomains of a known source belong to that source
	for domain, src := range sources {
		if strings.HasSuffix(hostname, "."+domain) {
			return src, true
		}
	}

	return knownSource{}, false
}

// FriendlyName returns a human-friendly name for a referrer hostname:
// the known display name when listed, otherwise the hostname with a
// leading "www." removed and the first letter capitalized.
func FriendlyName(hostname string) string {
	hostname = strings.ToLower(hostname)

	if src, ok := lookupHost(hostname); ok {
		return src.name
	}

	hostname = strings.TrimPrefix(hostname, "www.")
	return capitalizeFirst(hostname)
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
