// Package commercetools provides an authenticated REST API client for a
// commercetools-style platform: OAuth2 client-credentials token lifecycle,
// generic request dispatch, and response decoding into caller-specified
// result types.
//
// # Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/bjornsallarp/commercetools-go-sdk/pkg/commercetools"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := commercetools.New(&commercetools.Config{
//	    APIURL:       "https://api.example.com",
//	    AuthURL:      "https://auth.example.com/oauth/token",
//	    ProjectKey:   "my-project",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  resp, err := commercetools.Get[map[string]interface{}](ctx, cli, "/orders", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = resp
//	}
//
// # Responses and errors
//
// Every call returns a Response[T]. API rejections and auth failures are
// captured in the response (Success, StatusCode, Errors) rather than raised;
// only transport failures come back as errors. A successful status whose body
// cannot be mapped onto T leaves Result nil while Success stays true, so
// callers must check both.
//
// # Result types
//
// Raw JSON container types (json.RawMessage, maps, slices) are decoded
// directly from the body. Any other type goes through the activator registry:
// it participates by implementing ModelUnmarshaler, and the registry memoizes
// the per-type classification so repeated calls skip re-inspection. Types
// without the contract are negative-cached and simply yield an absent Result.
//
// # Tokens
//
// The client lazily obtains an access token via the OAuth2 client_credentials
// grant before the first authorized request and replaces it once expired.
// Concurrent calls that each observe an expired token may each fetch a new
// one; the last completed fetch wins, which is benign since every successful
// fetch yields a usable token.
package commercetools
