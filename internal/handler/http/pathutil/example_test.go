package pathutil_test

import (
	"fmt"

	"microsite-gateway/internal/handler/http/pathutil"
)

// ExampleNormalizePath demonstrates how path normalization works
// to prevent metrics label cardinality explosion.
func ExampleNormalizePath() {
	// Before normalization: each resource ID creates a unique path label.
	// This would cause cardinality explosion in Prometheus metrics.

	// After normalization: all IDs map to the same template.
	fmt.Println(pathutil.NormalizePath("/api/brands/123"))
	fmt.Println(pathutil.NormalizePath("/api/brands/456"))
	fmt.Println(pathutil.NormalizePath("/api/brands/789"))

	// Output:
	// /api/brands/:id
	// /api/brands/:id
	// /api/brands/:id
}

// ExampleNormalizePath_tenantPages demonstrates that arbitrary tenant site
// pages are collapsed to a bounded wildcard.
func ExampleNormalizePath_tenantPages() {
	fmt.Println(pathutil.NormalizePath("/menu/drinks/espresso"))
	fmt.Println(pathutil.NormalizePath("/menu/food/pasta"))
	fmt.Println(pathutil.NormalizePath("/about/team/founders"))

	// Output:
	// /menu/drinks/*
	// /menu/food/*
	// /about/team/*
}

// ExampleNormalizePath_static demonstrates that static endpoints remain unchanged.
func ExampleNormalizePath_static() {
	fmt.Println(pathutil.NormalizePath("/healthz"))
	fmt.Println(pathutil.NormalizePath("/metrics"))
	fmt.Println(pathutil.NormalizePath("/site/resolve"))

	// Output:
	// /healthz
	// /metrics
	// /site/resolve
}

// ExampleNormalizePath_queryParameters demonstrates that query parameters are stripped.
func ExampleNormalizePath_queryParameters() {
	fmt.Println(pathutil.NormalizePath("/api/brands/123?page=1"))
	fmt.Println(pathutil.NormalizePath("/healthz?format=json"))

	// Output:
	// /api/brands/:id
	// /healthz
}
