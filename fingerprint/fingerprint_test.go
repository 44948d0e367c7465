package fingerprint

import (
	"math/rand"
	"strings"
	"testing"
)

func TestGenerateChrome(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(1)))
	id := g.Generate("chrome")

	if id.BrowserType != "chrome" {
		t.Errorf("BrowserType = %q, want chrome", id.BrowserType)
	}
	if !strings.Contains(id.UserAgent, "Chrome/") {
		t.Errorf("UserAgent = %q, want a Chrome UA", id.UserAgent)
	}
	if !strings.Contains(id.SecCHUA, "Chromium") {
		t.Errorf("SecCHUA = %q, want Chromium brand", id.SecCHUA)
	}
}

func TestGenerateEdgeCarriesEdgToken(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(1)))
	id := g.Generate("edge")
	if !strings.Contains(id.UserAgent, "Edg/") {
		t.Errorf("UserAgent = %q, want Edg token", id.UserAgent)
	}
	if !strings.Contains(id.SecCHUA, "Microsoft Edge") {
		t.Errorf("SecCHUA = %q, want Microsoft Edge brand", id.SecCHUA)
	}
}

func TestGenerateFirefoxOmitsClientHints(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(1)))
	id := g.Generate("firefox")
	if !strings.Contains(id.UserAgent, "Firefox/") {
		t.Errorf("UserAgent = %q, want Firefox UA", id.UserAgent)
	}
	if id.SecCHUA != "" {
		t.Errorf("SecCHUA = %q, Firefox should not send client hints", id.SecCHUA)
	}
	if _, ok := id.Headers()["Sec-CH-UA"]; ok {
		t.Error("Headers() should omit Sec-CH-UA for Firefox")
	}
}

func TestGenerateUnknownFallsBackToChrome(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(1)))
	id := g.Generate("netscape")
	if id.BrowserType != "chrome" {
		t.Errorf("BrowserType = %q, want chrome fallback", id.BrowserType)
	}
}

func TestHeaders(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(1)))
	h := g.Generate("chrome").Headers()

	for _, key := range []string{"User-Agent", "Accept-Language", "Sec-CH-UA", "Sec-CH-UA-Mobile", "Sec-CH-UA-Platform"} {
		if h[key] == "" {
			t.Errorf("Headers() missing %s", key)
		}
	}
	if h["Sec-CH-UA-Mobile"] != "?0" {
		t.Errorf("Sec-CH-UA-Mobile = %q, want ?0 (desktop)", h["Sec-CH-UA-Mobile"])
	}
}

func TestRefreshCanChangeIdentity(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(7)))

	first := g.Generate("chrome")
	var changed bool
	for i := 0; i < 20; i++ {
		if g.Generate("chrome") != first {
			changed = true
			break
		}
	}
	if !changed {
		t.Error("repeated generation should eventually produce a different identity")
	}
}
