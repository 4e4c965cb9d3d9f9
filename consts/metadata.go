package consts

// AuthorizationKey Authorization header key
const AuthorizationKey string = "Authorization"

// BearerKey Bearer token prefix
const BearerKey string = "Bearer "

// GinContextKey gin context key
const GinContextKey = "gin-context"

// TraceKey trace id header
const TraceKey string = "X-Trace-Id"

// UserKey global user id
const UserKey string = "x-td-uid"

// UserEmailKey global user email
const UserEmailKey = "x-td-email"

// SessionKey global session id
const SessionKey string = "x-td-session"

// TokenKey global token
const TokenKey string = "x-td-token"
