package cache

// DefaultPrefix is the namespace shared by every key langpack writes.
const DefaultPrefix = "langpack:"

// Keyer derives cache keys for repositories.
type Keyer interface {
	// RepoKey returns the key holding the resolution state of one
	// repository, identified by its slug.
	RepoKey(slug string) string

	// Prefix returns the prefix shared by all keys this keyer produces.
	Prefix() string
}

// DefaultKeyer produces keys of the form "langpack:repo:<sha256(slug)>".
// Hashing keeps arbitrary slugs (plugin file paths included) safe as file
// names and Redis keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RepoKey returns the key for a repository slug.
func (DefaultKeyer) RepoKey(slug string) string {
	return hashKey(DefaultPrefix+"repo", slug)
}

// Prefix returns [DefaultPrefix].
func (DefaultKeyer) Prefix() string {
	return DefaultPrefix
}
