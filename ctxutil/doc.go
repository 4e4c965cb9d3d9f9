// Package ctxutil stores and reads request-scoped values: the signed-in
// user, the session, the bearer token and the trace id. Values set through a
// context that wraps a *gin.Context are mirrored onto the gin context.
//
//	ctx = ctxutil.SetUserID(ctx, "user-123")
//	uid := ctxutil.GetUserID(ctx)
package ctxutil
