// Package identity derives the rate limit identity of a caller.
//
// An Identity is a small tagged value: a user id when the caller is
// authenticated, a network address otherwise, or unresolved when neither
// is available. Resolution is deterministic:
//
//	id := identity.Resolve(userID, addr) // user id wins when non-empty
//
// For HTTP requests a Resolver combines a user id extractor with the
// clientip package:
//
//	res := identity.NewResolver(identity.WithUserIDFromContext(userKey{}))
//	id := res.FromRequest(r)
//	if !id.Resolved() {
//		// apply the configured Policy: PolicyDeny or PolicyStrictest
//	}
//
// Keys are prefixed with the identity kind ("user:42", "ip:203.0.113.7")
// so user ids and addresses never share quota.
package identity
