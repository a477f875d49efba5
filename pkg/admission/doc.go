// Package admission makes the inbound admission decision for HTTP requests
// and turns it into a response.
//
// A decision combines two collaborators: an abuse.Detector holding the block
// list, and a ratelimit.Counter enforcing per-identity fixed windows for a
// tier. CheckRateLimit consults the block list first; a blocked identity, or
// a blocked network address, is denied without consuming quota. Otherwise
// one slot of the tier window is consumed, and every quota denial is
// reported to the detector as a violation.
//
//	lim, err := admission.New(counter, detector,
//		admission.WithTiers(tiers),
//		admission.WithResolver(identity.NewResolver(identity.WithUserIDFromContext(userKey))),
//		admission.WithUnresolvedPolicy(identity.PolicyStrictest),
//	)
//
//	r.With(lim.Middleware(ratelimit.TierAuth)).Post("/auth/login", login)
//
// Middleware and Wrap resolve the caller identity, attach X-RateLimit-Limit,
// X-RateLimit-Remaining and X-RateLimit-Reset to every response, and answer
// denials with a JSON ErrorPayload plus Retry-After. Blocked callers get 403
// and quota denials 429 unless configured otherwise.
//
// A Recorder may be attached to observe decisions. MemoryRecorder and
// RedisRecorder tally outcomes; neither is consulted when deciding. Wrap
// recorders that do network I/O in an AsyncRecorder so decisions never wait
// on them.
package admission
