// Package fingerprint generates browser identity headers for requests
// against browser-facing chat backends. Identities are sampled from
// current desktop browser/platform combinations and can be refreshed
// when an upstream starts rejecting the current one.
package fingerprint

import (
	"fmt"
	"math/rand"
	"sync"
)

// Identity is one coherent browser fingerprint.
type Identity struct {
	BrowserType     string
	UserAgent       string
	SecCHUA         string
	SecCHUAMobile   string
	SecCHUAPlatform string
	AcceptLanguage  string
	Platform        string
}

// Generator produces and refreshes identities. Safe for concurrent use.
type Generator struct {
	mu   sync.Mutex
	rand *rand.Rand
}

type browserProfile struct {
	name    string
	version int
	uaF     string
	chuaF   string
}

var browserProfiles = map[string]browserProfile{
	"chrome": {
		name:    "chrome",
		version: 140,
		uaF:     "Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.0.0 Safari/537.36",
		chuaF:   `"Chromium";v="%d", "Not=A?Brand";v="24", "Google Chrome";v="%d"`,
	},
	"edge": {
		name:    "edge",
		version: 140,
		uaF:     "Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.0.0 Safari/537.36 Edg/%d.0.0.0",
		chuaF:   `"Chromium";v="%d", "Not=A?Brand";v="24", "Microsoft Edge";v="%d"`,
	},
	"firefox": {
		name:    "firefox",
		version: 142,
		uaF:     "Mozilla/5.0 (%s; rv:%d.0) Gecko/20100101 Firefox/%d.0",
		chuaF:   "",
	},
}

type platformProfile struct {
	uaToken string
	chua    string
}

var platformProfiles = []platformProfile{
	{"Windows NT 10.0; Win64; x64", `"Windows"`},
	{"Macintosh; Intel Mac OS X 10_15_7", `"macOS"`},
	{"X11; Linux x86_64", `"Linux"`},
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-US,en;q=0.9,en-IN;q=0.8",
	"en-GB,en;q=0.9,en-US;q=0.8",
}

// NewGenerator creates a Generator with the given seed source. A nil
// source uses the shared package source.
func NewGenerator(r *rand.Rand) *Generator {
	return &Generator{rand: r}
}

// Generate samples a fresh identity. browserType selects the browser
// family ("chrome", "edge", "firefox"); unknown or empty falls back to
// chrome.
func (g *Generator) Generate(browserType string) Identity {
	g.mu.Lock()
	defer g.mu.Unlock()

	profile, ok := browserProfiles[browserType]
	if !ok {
		profile = browserProfiles["chrome"]
	}
	platform := platformProfiles[g.intn(len(platformProfiles))]
	lang := acceptLanguages[g.intn(len(acceptLanguages))]

	// Spread versions a little so identities do not all match.
	version := profile.version - g.intn(3)

	id := Identity{
		BrowserType:     profile.name,
		SecCHUAMobile:   "?0",
		SecCHUAPlatform: platform.chua,
		AcceptLanguage:  lang,
		Platform:        platform.chua,
	}
	switch profile.name {
	case "firefox":
		id.UserAgent = fmt.Sprintf(profile.uaF, platform.uaToken, version, version)
	case "chrome":
		id.UserAgent = fmt.Sprintf(profile.uaF, platform.uaToken, version)
		id.SecCHUA = fmt.Sprintf(profile.chuaF, version, version)
	default:
		id.UserAgent = fmt.Sprintf(profile.uaF, platform.uaToken, version, version)
		id.SecCHUA = fmt.Sprintf(profile.chuaF, version, version)
	}
	return id
}

// Headers returns the identity as request headers. Firefox identities
// omit the client-hint headers, matching real browser behavior.
func (id Identity) Headers() map[string]string {
	h := map[string]string{
		"User-Agent":      id.UserAgent,
		"Accept-Language": id.AcceptLanguage,
	}
	if id.SecCHUA != "" {
		h["Sec-CH-UA"] = id.SecCHUA
		h["Sec-CH-UA-Mobile"] = id.SecCHUAMobile
		h["Sec-CH-UA-Platform"] = id.SecCHUAPlatform
	}
	return h
}

func (g *Generator) intn(n int) int {
	if g.rand != nil {
		return g.rand.Intn(n)
	}
	return rand.Intn(n)
}

var defaultGenerator = &Generator{}

// Generate samples an identity from the default generator.
func Generate(browserType string) Identity {
	return defaultGenerator.Generate(browserType)
}
