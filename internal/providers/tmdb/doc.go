// Package tmdb builds media cards (movie, TV show or person) from The Movie
// Database multi search. Only the top hit is used.
package tmdb
