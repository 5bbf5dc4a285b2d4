package useragent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docucloud/internal/pkg/useragent"
)

func TestClassifyDesktopChrome(t *testing.T) {
	c := useragent.Classify("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	assert.Equal(t, useragent.DeviceDesktop, c.DeviceType)
	assert.Contains(t, c.Browser, "Chrome")
	assert.Contains(t, c.OS, "Windows")
}

func TestClassifyIPhone(t *testing.T) {
	c := useragent.Classify("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")

	assert.Equal(t, useragent.DeviceMobile, c.DeviceType)
	assert.Equal(t, "iPhone", c.DeviceFamily)
	assert.Contains(t, c.OS, "iOS")
}

func TestClassifyNamedDeviceFamilyCountsAsMobile(t *testing.T) {
	// Any recognized device family other than "Other" is treated as mobile,
	// so Mac hardware lands in the mobile bucket.
	c := useragent.Classify("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15")

	assert.Equal(t, "Mac", c.DeviceFamily)
	assert.Equal(t, useragent.DeviceMobile, c.DeviceType)
}

func TestClassifyEmptyUserAgent(t *testing.T) {
	c := useragent.Classify("")

	assert.Equal(t, useragent.DeviceDesktop, c.DeviceType)
	assert.Equal(t, "Unknown", c.Browser)
	assert.Equal(t, "Unknown", c.OS)
	assert.Equal(t, "Other", c.DeviceFamily)
}
