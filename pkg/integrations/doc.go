// Package integrations provides the provider adapters that locate, decode
// and link language-pack manifests on git hosting services.
//
// # Overview
//
// Each provider has its own subpackage implementing [Adapter]:
//
//   - [github]: GitHub contents API, base64 envelope
//   - [bitbucket]: Bitbucket 2.0 src API, raw file body
//   - [gitlab]: GitLab repository files API, base64 envelope
//   - [gitea]: Gitea raw API, base64 envelope or raw body
//
// An adapter knows three things about its provider: where the
// language-pack.json manifest lives, how the API wraps it, and how a
// manifest's relative package path becomes an absolute download URL.
// Adapters perform no I/O.
//
// # Manifest Format
//
// A manifest maps locale codes to package entries:
//
//	{
//	  "de_DE": {"package": "/languages/de_DE.zip", "updated": "2024-06-01 00:00:00"}
//	}
//
// Responses that are empty or carry the provider's generic error envelope
// (a top-level "message" field) are rejected with [ErrInvalidResponse].
//
// # Shared Infrastructure
//
// [Client] pairs a [Registry] of adapters with an HTTP fetcher and
// per-provider tokens. It issues the single manifest request for a
// repository and classifies the outcome.
//
// # Adding a New Provider
//
//  1. Add the provider and its endpoints to pkg/provider
//  2. Create a subpackage: pkg/integrations/<provider>/
//  3. Implement [Adapter] using the helpers in this package
//  4. Register it in the default registry
//
// [github]: github.com/matzehuels/langpack/pkg/integrations/github
// [bitbucket]: github.com/matzehuels/langpack/pkg/integrations/bitbucket
// [gitlab]: github.com/matzehuels/langpack/pkg/integrations/gitlab
// [gitea]: github.com/matzehuels/langpack/pkg/integrations/gitea
package integrations
