// Package client fetches identity display data from the identity-data API.
//
// # Requests
//
// A section is requested with
//
//	GET {baseURL}/api/v1/{provider}/GetDataValue/All?DataAccountUrl={locator without scheme}
//
// Each call makes at most one request. Failures are not retried; they are
// logged and returned as *apierror.Error values whose Kind tells a transport
// failure, a non-success status, an undecodable body and a response without a
// "main" section apart.
//
// # Cache
//
// Successfully selected sections are cached by the locator string exactly as
// passed to FetchSection, for 5 minutes unless configured otherwise. Expired
// entries are dropped when next looked up. Evict removes one identity's entry
// and ClearCache removes all of them.
//
// # Development mode
//
// With development mode enabled the client makes no requests and does not use
// the cache. After a fixed simulated latency it returns MockSection for the
// locator's root name.
package client
