/*
Package apisdk provides a client SDK for the ThreatCombat membership API.

# Overview

The package is organized around two main types:

  - SDKClient: unauthenticated operations (registration, login, public catalog
    reads, health probes) and the entry point for creating Sessions
  - Session: authenticated operations carrying a bearer session token

Create an SDKClient to reach public endpoints and authenticate:

	client := apisdk.NewSDKClient("https://api.threatcombat.org")

	// Check service health
	health, err := client.Livez(ctx)

	// Register an account
	reg, err := client.Register(ctx, apisdk.RegisterRequest{
		Name:       "Amina Okoro",
		Email:      "amina@students.tuk.ac.ke",
		Password:   "correct horse battery staple",
		University: "Technical University of Kenya",
	})

	// Authenticate to create a session
	session, err := client.Login(ctx, "amina@students.tuk.ac.ke", "correct horse battery staple")

Use the Session for everything behind authentication:

	me, err := session.Me(ctx)
	users, err := session.ListUsers(ctx, apisdk.UserListOptions{Chapter: chapterID})
	entry, err := session.ReviewAuditEntry(ctx, entryID, apisdk.ReviewRequest{Status: "RESOLVED"})

# Tokens

Session tokens are stateless JWTs. The SDK does not refresh them; when a token
expires the server responds 401 and the caller should log in again. A Session
can also be rebuilt from a stored token with NewSessionFromToken.

# Error Handling

Non-2xx responses are returned as *APIError carrying the HTTP status code and
the server's message:

	_, err := session.DeleteUser(ctx, id)
	var apiErr *apisdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
		// actor lacks the role for this operation
	}

# Types

The SDK declares its own wire types mirroring the server's JSON. They are
plain data carriers; role and status values are string constants matching the
server's vocabulary.
*/
package apisdk
