// Package atmos authenticates requests for the EMC Atmos REST API.
//
// Atmos requests carry the caller identity in x-emc-uid and an HMAC-SHA1
// signature in x-emc-signature. The signature covers a canonical string built
// from the method, a fixed set of standard headers, the URI path and every
// x-emc-* header. The remote service recomputes it byte for byte.
//
// # Key Components
//
//   - Resolver: maps an operation type to the HTTP method and URI path of a
//     data request or a subtenant request
//   - Signer and Worker: build the canonical string and attach auth headers;
//     a Worker owns the keyed hashes of one goroutine
//   - TokenCache: subtenant ids issued per credential
//   - Driver: ties the above together, builds signed requests and runs the
//     subtenant bootstrap
//
// # Access Modes
//
// With filesystem access objects are addressed as /rest/namespace/<path>.
// Without it they are addressed by id under /rest/objects, and creates go to
// /rest/objects itself since the server assigns the id.
//
// # Example Usage
//
//	drv, err := atmos.New(atmos.Config{
//	    Nodes:      []string{"10.0.0.1:9022"},
//	    Namespace:  "ns1",
//	    Credential: atmos.Credential{UID: "user1", Secret: secret},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, err := drv.AuthTokenWithRetry(ctx, drv.Signer().Credential(), 5); err != nil {
//	    log.Fatal(err)
//	}
//
//	req, err := drv.BuildRequest(ctx, drv.Nodes()[0], atmos.Operation{
//	    Type: atmos.OpRead,
//	    Item: atmos.Item{Name: "0a1b2c"},
//	}, nil, 0)
//
// Listing and copy headers are not provided by this package.
package atmos
