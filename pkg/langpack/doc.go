// Package langpack resolves translation packs published in git repositories.
//
// A repository that hosts translations for a plugin or theme publishes a
// language-pack.json manifest at its root, mapping locale codes to package
// archives. The [Resolver] fetches that manifest from the repository's
// provider, turns every entry into a [LocalePackage] with an absolute
// download URL, and caches the result per repository slug.
//
// # Caching
//
// Successful results are cached for a randomized six to eighteen hours so
// that many repositories configured together do not expire in the same
// instant. Provider errors (rate limits, missing repositories, bad
// credentials) are cached as a [Failure] for a cooldown derived from the
// provider's reset headers; while a failure is cached no request is made
// for that repository and [errors.CooldownError] is returned instead.
// Transport errors and unusable manifests are never cached.
//
// # Update offers
//
// [SelectUpdates] compares resolved packs with the installed translation
// revisions and returns the [Translation] records a host should offer,
// one per slug and locale.
//
// [errors.CooldownError]: github.com/matzehuels/langpack/pkg/errors.CooldownError
package langpack
