// Package types defines the request and error bodies of the relay's HTTP API.
//
// Request types:
//   - ChatRequest: body of POST /chat
//
// Error types:
//   - ErrorResponse: JSON body returned before a stream is committed
//
// Optional request fields are pointers so that an explicit zero can be told
// apart from an omitted field:
//
//	{"userData": "Hi", "temperature": 0}   // temperature present, 0
//	{"userData": "Hi"}                     // temperature absent, default applies
package types
