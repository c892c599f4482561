// Package pkg provides the libraries behind langpack, a resolver for
// translation packs published in git repositories.
//
// # Overview
//
// A repository that ships translations for a plugin or theme publishes a
// language-pack.json manifest on its default (or configured) branch. The
// manifest maps locales to package archives. langpack reads that manifest
// from the hosting provider, turns each entry into a download URL and
// caches the result, including provider failures, so sites poll the
// providers rarely.
//
// The data flow:
//
//	[config] repository tables
//	         ↓
//	[repouri] parse languages_uri, reject unsafe input
//	         ↓
//	[provider] endpoints per provider and enterprise base
//	         ↓
//	[integrations] fetch + decode language-pack.json
//	         ↓
//	[langpack] resolver: cache, cooldown, single flight
//	         ↓
//	[langpack] SelectUpdates: translations to offer a site
//
// # Packages
//
//   - [buildinfo]: version metadata set at link time
//   - [cache]: file, memory, Redis, MongoDB and null backends
//   - [config]: TOML configuration with environment overrides
//   - [errors]: coded errors and the cooldown error
//   - [httputil]: single-request HTTP fetcher with OAuth2 token headers
//   - [integrations]: GitHub, Bitbucket, GitLab and Gitea adapters
//   - [langpack]: resolver, entry store, diagnostics and update selection
//   - [observability]: resolve and cache hooks, with a Prometheus adapter
//   - [provider]: provider names and endpoint resolution
//   - [repouri]: repository URI parsing and sanitization
//
// # Quick Start
//
//	cfg := &langpack.RepositoryConfig{
//	    Provider:     provider.GitHub,
//	    Type:         langpack.TypePlugin,
//	    Slug:         "hello",
//	    LanguagesURI: "https://github.com/acme/hello-translations",
//	}
//	client := langpack.NewClient(nil, nil)
//	r := langpack.NewResolver(cache.NewMemoryCache(0), nil, client, nil)
//	res, err := r.Resolve(ctx, cfg)
//
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/langpack/pkg/buildinfo
// [cache]: https://pkg.go.dev/github.com/matzehuels/langpack/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/langpack/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/langpack/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/langpack/pkg/httputil
// [integrations]: https://pkg.go.dev/github.com/matzehuels/langpack/pkg/integrations
// [langpack]: https://pkg.go.dev/github.com/matzehuels/langpack/pkg/langpack
// [observability]: https://pkg.go.dev/github.com/matzehuels/langpack/pkg/observability
// [provider]: https://pkg.go.dev/github.com/matzehuels/langpack/pkg/provider
// [repouri]: https://pkg.go.dev/github.com/matzehuels/langpack/pkg/repouri
package pkg
