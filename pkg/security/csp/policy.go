// Package csp builds Content-Security-Policy header values.
//
// The gateway stamps a CSP on every response it produces; microsites embed
// external media, so the default policy restricts framing and script sources
// rather than locking everything to 'self'.
package csp

import (
	"sort"
	"strings"
)

// Builder provides a fluent interface for constructing a
// Content-Security-Policy header value.
//
// Builder is not safe for concurrent mutation; build policies once at
// startup and reuse the resulting string.
type Builder struct {
	directives map[string][]string
	reportOnly bool
}

// NewBuilder creates an empty policy builder.
func NewBuilder() *Builder {
	return &Builder{directives: make(map[string][]string)}
}

// DefaultSrc sets the default-src directive, the fallback for all fetch
// directives that are not set explicitly.
func (b *Builder) DefaultSrc(sources ...string) *Builder {
	b.directives["default-src"] = sources
	return b
}

// ScriptSrc sets the script-src directive.
func (b *Builder) ScriptSrc(sources ...string) *Builder {
	b.directives["script-src"] = sources
	return b
}

// StyleSrc sets the style-src directive.
func (b *Builder) StyleSrc(sources ...string) *Builder {
	b.directives["style-src"] = sources
	return b
}

// ImgSrc sets the img-src directive.
func (b *Builder) ImgSrc(sources ...string) *Builder {
	b.directives["img-src"] = sources
	return b
}

// FrameAncestors sets the frame-ancestors directive, which controls who may
// embed responses in frames. "'none'" forbids all framing (clickjacking
// protection).
func (b *Builder) FrameAncestors(sources ...string) *Builder {
	b.directives["frame-ancestors"] = sources
	return b
}

// ReportOnly switches the policy to report-only mode: violations are
// reported but not enforced. Useful when trialing a policy change.
func (b *Builder) ReportOnly(on bool) *Builder {
	b.reportOnly = on
	return b
}

// HeaderName returns the header the built value belongs in, depending on
// report-only mode.
func (b *Builder) HeaderName() string {
	if b.reportOnly {
		return "Content-Security-Policy-Report-Only"
	}
	return "Content-Security-Policy"
}

// Build renders the directives as a header value. Directives are emitted in
// a stable order so the output is deterministic. Returns "" when no
// directives are set.
func (b *Builder) Build() string {
	if len(b.directives) == 0 {
		return ""
	}

	names := make([]string, 0, len(b.directives))
	for name := range b.directives {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		sources := b.directives[name]
		if len(sources) == 0 {
			continue
		}
		parts = append(parts, name+" "+strings.Join(sources, " "))
	}
	return strings.Join(parts, "; ")
}

// GatewayPolicy is the policy the gatekeeping pipeline stamps on every
// response: no framing, same-origin defaults, https-only images.
func GatewayPolicy() *Builder {
	return NewBuilder().
		DefaultSrc("'self'").
		ScriptSrc("'self'").
		StyleSrc("'self'", "'unsafe-inline'").
		ImgSrc("'self'", "data:", "https:").
		FrameAncestors("'none'")
}
