// Package localmodel fetches a short generated answer from a locally hosted
// language model for the left pane of the search page.
package localmodel
