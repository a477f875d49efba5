// Package requestid attaches a correlation id to every request and carries
// it through context, logs and outbound calls.
//
// Middleware reuses a well-formed incoming X-Request-ID header (letters,
// digits, '-' and '_', at most 128 bytes) or generates a UUID, stores it in
// the request context and echoes it in the response. FromContext reads it
// back, LoggerExtractor adds it to log records as "request_id", and
// Transport forwards it to upstream services.
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//
//	client := &http.Client{Transport: requestid.Transport{Base: http.DefaultTransport}}
package requestid
