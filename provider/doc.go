// Package provider defines the contract for chat backends, a registry
// of named provider factories, and the shared Client composition that
// vendors build on: prompt composition from conversation history,
// optimizer application, the HTTP round trip, the response
// normalization pipeline, and history commit when a response finishes.
//
// Vendor adapters live in subpackages (scira, together, gmi, ...) and
// self-register from init:
//
//	import _ "github.com/kbukum/scoutkit/provider/scira"
//
//	p, err := provider.Open("scira", provider.Settings{Model: "scira-default"})
//	text, err := p.Ask(ctx, "What is Go?")
package provider
