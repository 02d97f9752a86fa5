// Package spotify builds music cards from Spotify track search.
package spotify
