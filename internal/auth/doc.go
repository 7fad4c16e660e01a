// Package auth implements the SkillSwap authentication core: paired JWT
// access/refresh tokens, credential storage, password hashing, and the
// register/login/refresh/logout orchestration.
//
// Access and refresh tokens are signed with independent secrets and expiries.
// Refresh tokens are store-backed and single-active-session: each login
// overwrites the stored token hash for the user, invalidating any earlier
// session, and logout clears it. Access tokens are validated by signature
// alone with no database hit.
package auth
