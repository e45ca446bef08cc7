// Package ratelimit paces work so the target site is not hit in bursts.
//
// The Pacer wraps golang.org/x/time/rate with a burst of one, so the first
// event passes immediately and every later event waits at least the
// configured interval after the previous one. The orchestrator uses it to
// space account dispatches.
//
//	pacer := ratelimit.NewPacer(time.Second)
//	for _, account := range accounts {
//		if err := pacer.Wait(ctx); err != nil {
//			return err
//		}
//		pool.Submit(ctx, job)
//	}
package ratelimit
