// Package clientip extracts the originating client's IP address from an
// *http.Request when the application runs behind one or more reverse proxies.
//
// The default resolution order is:
//
//  1. X-Forwarded-For: comma-separated chain, the leftmost valid IP is used
//  2. X-Real-IP: set by reverse proxies such as Nginx
//  3. RemoteAddr: TCP peer address as a fallback
//
// Deployments behind a CDN that sets its own header can build an Extractor
// with a different chain:
//
//	ext := clientip.NewExtractor("CF-Connecting-IP", clientip.HeaderForwardedFor)
//	ip := ext.Extract(r)
//
// Helper functions:
//
//   - GetIP extracts the client IP with the default chain.
//   - WithContext and FromContext store/retrieve the resolved
//     address inside a context.Context.
//   - Middleware adds the IP to the request's context so downstream
//     handlers and rate limiters can read it without repeating the work.
//
// # Error Handling
//
// Extraction never returns an error. If no valid address is found an empty
// string is returned so callers can decide how to proceed.
package clientip
