// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

/*
Package authz provides role-based access control using Casbin.

Two roles exist: user (every verified member) and admin, which inherits
all user permissions and additionally manages gym content, accounts and
broadcasts. The model and default policy are embedded; a policy file on
disk can replace the embedded policy.

Objects are request paths matched with keyMatch2 and actions are derived
from the HTTP method (read, write, delete):

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	mw := authz.NewMiddleware(enforcer, nil)

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW.Authenticate, mw.AuthorizeRequest)
	})
*/
package authz
