/*
Package brave wraps the Brave Search API.

One Provider holds two API clients (search and suggest use separate
subscription keys) and exposes three gateway backends:

	Web     general web results for the left pane; reports a corrected query
	Images  image hits for the right-pane grid
	News    query-matched news for the right pane

Suggest serves query completions for the search box.
*/
package brave
