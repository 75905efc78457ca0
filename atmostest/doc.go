// Package atmostest provides an in-process Atmos endpoint for tests.
//
// The server verifies x-emc-signature on every request with the same
// canonical string the client uses, issues subtenant ids on PUT
// /rest/subtenant and keeps objects in memory, addressed either by id under
// /rest/objects or by path under /rest/namespace.
//
//	srv := atmostest.NewServer(atmos.Credential{UID: "user1", Secret: secret})
//	defer srv.Close()
//
//	drv, _ := atmos.New(atmos.Config{Nodes: []string{srv.Addr()}, Credential: cred})
//	token, ok, err := drv.AcquireSessionToken(ctx, cred)
package atmostest
