// Package userctx carries the authenticated identity through the
// request context so repositories and services can attribute writes.
package userctx

import "context"

type contextKey string

const usernameKey contextKey = "username"
const roleKey contextKey = "role"

// SetUsername adds the acting username to the request context.
func SetUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// GetUsername retrieves the acting username from the request context.
func GetUsername(ctx context.Context) string {
	username, ok := ctx.Value(usernameKey).(string)
	if !ok || username == "" {
		return "anonymous"
	}
	return username
}

// SetRole adds the session role to the request context.
func SetRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

// GetRole retrieves the session role from the request context.
func GetRole(ctx context.Context) string {
	role, ok := ctx.Value(roleKey).(string)
	if !ok {
		return ""
	}
	return role
}
