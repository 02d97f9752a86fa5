// Package ws pushes notices and layouts to the page over a WebSocket.
//
// The session is resolved before the upgrade so a new cookie can ride on
// the handshake response. After that the connection is keyed by session
// token (or client IP when no session exists).
//
// Message Types (Client → Server):
//   - search: {"type":"search","q":"cats","mode":"search"}
//   - dismiss: {"type":"dismiss","id":"<notice id>"}
//   - ping: keep-alive
//
// Message Types (Server → Client):
//   - session: resolved session state, sent first
//   - layout: a published layout (stale cycles are never sent)
//   - notice: a notice was raised (active) or dismissed (inactive)
//   - pong, error
//
// Example Usage:
//
//	handler := ws.NewHandler(coordinator, engine, notices, ws.Options{CookieName: "session_id"})
//	router.GET("/stream", handler.HandleConnection)
package ws
