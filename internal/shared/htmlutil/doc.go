// Package htmlutil loads upstream HTML pages as UTF-8 and strips markup from
// provider snippets.
package htmlutil
