package mongodb

const (
	// SessionsCollection holds pending authorization sessions keyed by
	// code hash.
	SessionsCollection = "oidc_auth_sessions"
)
