/*
Package wiki builds encyclopedia widgets from a MediaWiki site.

For each query the provider searches for matching articles, fetches their
lead extracts and thumbnails in one batched query, then loads each article
page to read its infobox (goquery) and "See also" list (XPath). Infobox
rows are filtered: over-long or self-repeating rows are dropped, reference
markers removed and coordinates reduced to signed decimals.
*/
package wiki
