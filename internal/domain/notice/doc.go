/*
Package notice implements the user-visible error notification.

Each client session has one Surface. A Surface is either idle or showing
exactly one notice:

	Idle --Report--> Showing --Dismiss(id)--> Idle

While showing, further reports are dropped so the first failure is never
overwritten. Nothing but an explicit dismissal returns the surface to idle.
Subscribers (the websocket stream) see every transition; Close drops them
all when the session is replaced or the server stops.

Notices are rendered with types.NoticePresentation: a small popup at the
top center with a single OK button.
*/
package notice
