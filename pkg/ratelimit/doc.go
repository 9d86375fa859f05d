// Package ratelimit paces the per-username lookups of the report.
//
// The upstream API grants a fixed number of user lookups per 15 minute
// window (900 by default). TokenBucket mirrors that fixed window;
// SlidingWindow spreads calls over any rolling window instead. Both block in
// Wait until a slot frees up or the context is cancelled.
//
//	limiter, err := ratelimit.New("token_bucket", 900, 15*time.Minute)
//	if err := limiter.Wait(ctx); err != nil {
//		return err
//	}
package ratelimit
