// Package password hashes identity secrets with Argon2id and verifies them in
// constant time.
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Identity stores hold only these strings. Plaintext secrets exist in memory for
// the duration of a single Hash or Verify call.
package password
