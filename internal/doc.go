// Package internal holds packages private to tokenauth.
//
// # Sub-packages
//
//   - api: HTTP routes, middleware and presenters served by cmd/tokenauth
//   - config: viper-based service configuration and identity seeding
//   - rate: Redis fixed-window counters backing the login throttle
package internal
