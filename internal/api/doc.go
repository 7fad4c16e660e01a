// Package api implements the HTTP REST API and WebSocket server for the
// SkillSwap backend.
//
// This package provides:
//   - Auth endpoints (register, login, refresh, logout)
//   - User endpoints (profile, password change, admin user listing)
//   - WebSocket hub for per-user real-time notifications
//   - Middleware stack (request ID, logging, recovery, CORS, auth guards)
//
// # Security
//
// Authentication uses a JWT access/refresh pair signed with independent
// secrets. Protected routes require a Bearer access token; role-guarded
// routes additionally check the role claim. WebSocket connections
// authenticate with an access token supplied as a query parameter, verified
// before the protocol upgrade.
package api
