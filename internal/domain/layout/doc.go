/*
Package layout turns a settled bundle into two panes of display blocks.

Home page:

	left  (2/3)          shortcuts, news
	right (1/3, static)  example queries

Search page:

	left  (2/3)  model answer, web results
	right (1/3)  one block per universal widget in declared order,
	             image grid (fixed images per row), news

A failed source, or one that succeeded with no items, contributes no
block. Compose is pure.
*/
package layout
