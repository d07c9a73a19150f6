// Package pathutil normalizes request paths for metrics labeling.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
// Pre-compiled at initialization for optimal performance.
var pathPatterns = []*PathPattern{
	// API resource routes with IDs
	{Pattern: regexp.MustCompile(`^/api/brands/[^/]+$`), Template: "/api/brands/:id"},
	{Pattern: regexp.MustCompile(`^/api/branches/[^/]+$`), Template: "/api/branches/:id"},
	{Pattern: regexp.MustCompile(`^/api/leads/[^/]+$`), Template: "/api/leads/:id"},
	{Pattern: regexp.MustCompile(`^/api/payments/[^/]+$`), Template: "/api/payments/:id"},

	// Dashboard site editor routes keyed by site slug
	{Pattern: regexp.MustCompile(`^/dashboard/sites/[^/]+$`), Template: "/dashboard/sites/:slug"},
	{Pattern: regexp.MustCompile(`^/dashboard/sites/[^/]+/.+$`), Template: "/dashboard/sites/:slug/*"},
}

// maxLabelSegments caps how deep an unmatched path may be before it is
// collapsed. Tenant sites publish arbitrary page trees, so anything deeper
// is folded into a wildcard to keep label cardinality bounded.
const maxLabelSegments = 2

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs (e.g., /api/brands/123) to template format (e.g., /api/brands/:id)
// and collapses deep unmatched paths (tenant site pages) to a two-segment wildcard.
//
// Examples:
//
//	NormalizePath("/api/brands/123")          // "/api/brands/:id"
//	NormalizePath("/dashboard/sites/cafe-x")  // "/dashboard/sites/:slug"
//	NormalizePath("/healthz")                 // "/healthz" (unchanged)
//	NormalizePath("/site/resolve")            // "/site/resolve" (unchanged)
//	NormalizePath("/menu/drinks/espresso")    // "/menu/drinks/*" (collapsed)
//
// Query parameters and trailing slashes are handled:
//
//	NormalizePath("/api/brands/123?page=1")   // "/api/brands/:id"
//	NormalizePath("/api/brands/123/")         // "/api/brands/:id"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	// Try to match against known patterns
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// Unmatched deep paths are tenant site pages; collapse them.
	return collapse(path)
}

// collapse truncates a path to maxLabelSegments segments plus a wildcard.
// Shallow paths pass through unchanged.
func collapse(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segments) <= maxLabelSegments {
		return path
	}
	return "/" + strings.Join(segments[:maxLabelSegments], "/") + "/*"
}
