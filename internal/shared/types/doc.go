// Package types provides shared data structures for the search backend.
//
// This package defines the data model used across all backend components,
// so that gateways, the aggregator and the layout composer agree on shapes.
//
// Core Types:
//   - Query: One submitted search (text + mode)
//   - Source: Provider identity (kind + optional universal subkind)
//   - ProviderResult: Uniform per-provider envelope for one cycle
//   - Item: Tagged union over text, widget, image and news items
//   - Bundle: Every configured source's result for one cycle
//   - LayoutBundle: Two panes of display blocks
//   - Session, Notice: Session state and the single error notice
//
// Request Types:
//   - SearchRequest: Query submission body
//   - WSMessage: WebSocket communication
//
// Example Usage:
//
//	q := types.Query{Text: "cats", Mode: types.ModeSearch}
//	res := types.Pending(types.Source{Kind: types.KindNews}, 1)
//	res.Settle(items, nil)
package types
