package referrers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docucloud/internal/pkg/referrers"
)

func TestClassifyDirect(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a url"} {
		src := referrers.Classify(raw)
		assert.Equal(t, "Direct", src.Name, "referrer %q", raw)
		assert.Equal(t, referrers.ChannelDirect, src.Channel)
	}
}

func TestClassifyKnownSources(t *testing.T) {
	tests := []struct {
		referrer string
		name     string
		channel  string
	}{
		{"https://www.google.com/search?q=docucloud", "Google", referrers.ChannelSearch},
		{"https://google.com/", "Google", referrers.ChannelSearch},
		{"https://www.bing.com/search", "Bing", referrers.ChannelSearch},
		{"https://t.co/abc123", "X/Twitter", referrers.ChannelSocial},
		{"https://www.facebook.com/", "Facebook", referrers.ChannelSocial},
		{"https://mail.google.com/mail/u/0/", "Gmail", referrers.ChannelEmail},
	}

	for _, tt := range tests {
		src := referrers.Classify(tt.referrer)
		assert.Equal(t, tt.name, src.Name, "referrer %s", tt.referrer)
		assert.Equal(t, tt.channel, src.Channel, "referrer %s", tt.referrer)
	}
}

func TestClassifySubdomainOfKnownSource(t *testing.T) {
	src := referrers.Classify("https://news.google.com/articles/xyz")
	assert.Equal(t, "Google", src.Name)
	assert.Equal(t, referrers.ChannelSearch, src.Channel)
}

func TestClassifyUnknownHostIsReferral(t *testing.T) {
	src := referrers.Classify("https://www.partner-site.io/blog/post")
	assert.Equal(t, referrers.ChannelReferral, src.Channel)
	assert.Equal(t, "Partner-site.io", src.Name)
}

func TestFriendlyName(t *testing.T) {
	assert.Equal(t, "Google", referrers.FriendlyName("www.google.com"))
	assert.Equal(t, "Example.com", referrers.FriendlyName("www.example.com"))
	assert.Equal(t, "Example.com", referrers.FriendlyName("example.com"))
}
