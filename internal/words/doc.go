// Package words loads per-language word catalogs and draws random,
// non-repeating samples from them, optionally filtered by difficulty.
// Catalogs are static JSON resources and are never mutated after loading.
package words
