/*
Package resilience provides circuit breakers for upstream providers.

# Overview

Each provider gateway runs its calls through a Breaker. After repeated
failures the breaker opens and calls fail fast with ErrCircuitOpen, which
the gateway reports as a transport failure for that source alone. Caller
cancellation (a superseded query) is not counted as a failure.

# Usage

	breakers := resilience.NewSet(resilience.DefaultSettings())

	items, err := resilience.Call(breakers.Get("news"), func() ([]types.Item, error) {
		return provider.Fetch(ctx, q)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
