// Package testutil provides testing utilities for generators.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Targets
//
//	rng := testutil.NewRNG(seed)
//	targets := rng.Targets(100, 12) // signed, up to 12 digits
//
// # Expression Checks
//
//	testutil.AssertExpr(t, expr, n, "227", "22", "7", "2")
package testutil
