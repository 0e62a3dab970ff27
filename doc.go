// Package auth implements the club platform login flow: user persistence,
// ordered credential validation, JWT session issuance, and the
// email-verification side path.
//
// Login flow:
//   - Auther.AuthBasic is the single entry point. It looks up the login
//     candidate case-insensitively among accounts holding a login-eligible
//     role, runs LoginValidator's ordered checks, and returns an
//     AuthResponse union: user plus session token, or an error list.
//   - LoginValidator encodes the check precedence (existence, account
//     flags, lockout, password, email verification). The first failing
//     check decides the wire code, so lockout always wins over a wrong
//     password and a wrong password always wins over an unverified email.
//
// Verification side path:
//   - VerificationNotifier mints a 24h scoped token, persists it on the
//     user record, and dispatches the verification email on a detached
//     goroutine. It runs best-effort: failures are logged, never surfaced
//     to the login response.
//
// Tokens:
//   - TokenService signs HS256 JWTs. MintSessionToken issues the API
//     session credential (10h, or 7d with rememberMe); MintVerificationToken
//     issues the scoped email-confirmation credential. Verification tokens
//     are rejected by SessionFromToken.
package auth
