package redis

const (
	// KeyPrefixIdentity is the prefix for cached identity resolutions.
	// Keys are derived from a token digest, never from the raw token.
	KeyPrefixIdentity = "murmur:identity:"
)

// IdentityKey returns the Redis key for a cached identity by token digest.
func IdentityKey(digest string) string {
	return KeyPrefixIdentity + digest
}
