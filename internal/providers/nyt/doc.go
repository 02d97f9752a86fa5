// Package nyt serves New York Times top stories as home page news.
package nyt
