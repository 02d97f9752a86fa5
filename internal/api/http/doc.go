/*
Package http provides the REST surface of the search service.

Every endpoint answers with the shared envelope:

	{"success": true,  "response": <payload>}
	{"success": false, "response": "<message>"}

Routes:

	POST /api/sessions              mint a session token (session store)
	GET  /api/sessions/:token       validity check: {valid, ttl_seconds}
	GET  /api/session               resolve the caller's session cookie
	GET  /api/home                  home page layout
	POST /api/search                {"q": ..., "mode": "search"} → layout
	GET  /api/suggest?q=            query completions
	GET  /api/notice                active notice and its presentation
	POST /api/notice/:id/dismiss    dismiss the active notice
	GET  /health

Clients without a session (when sessions are optional, or while the store
is down) are keyed by client IP for notices and query cycles.
*/
package http
