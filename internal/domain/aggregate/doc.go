// Package aggregate fans one query out to every configured provider and
// collects the settled results into a types.Bundle.
//
// All providers run concurrently; Aggregate returns only after each has
// settled, so the bundle always covers every configured source. Image
// results are cut to the image cap, keeping the provider's own prefix.
package aggregate
