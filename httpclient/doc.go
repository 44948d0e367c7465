// Package httpclient provides the HTTP client used to talk to upstream
// chat backends: configurable base URL, default headers, proxy support,
// retry with backoff, rate limiting, and streaming responses.
//
// Buffered calls go through Do; streaming calls go through DoStream,
// which hands back the raw response body for line-oriented consumption:
//
//	client, err := httpclient.New(httpclient.Config{
//		Name:    "scira",
//		BaseURL: "https://scira.ai",
//		Timeout: 30 * time.Second,
//	})
//
//	stream, err := client.DoStream(ctx, httpclient.Request{
//		Method: http.MethodPost,
//		Path:   "/api/search",
//		Body:   payload,
//	})
//	defer stream.Close()
//
// Errors are reported as *errors.AppError values; non-2xx upstream
// statuses become UpstreamProtocol errors carrying the status and body.
package httpclient
