// Package translation translates word batches between languages using a
// text-completion model. Model replies are treated as untrusted input: the
// parser degrades from strict JSON to substring extraction to identity
// fallback, and the output always preserves input length and order.
package translation
