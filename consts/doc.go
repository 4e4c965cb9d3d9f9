// Package consts defines the header names and context keys shared by the
// HTTP layer and ctxutil.
package consts
