package ports

// TokenRepository persists the long-lived bearer credential.
type TokenRepository interface {
	// Load returns the cached token, or "" when no cache entry exists.
	Load() (string, error)
	Save(token string) error
	Delete() error
}
