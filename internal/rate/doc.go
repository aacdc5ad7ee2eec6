// Package rate throttles failed logins with Redis fixed-window counters.
//
// Each failed attempt runs INCR and, on the first hit of a window, EXPIRE.
// Keys:
//   - <prefix>:rl:id:<identifier>  failures per identifier
//   - <prefix>:rl:ip:<ip>          failures per client IP (optional)
package rate
