// Package github implements the language pack adapter for GitHub.
//
// The manifest is read through the contents API
// (GET /repos/{owner}/{repo}/contents/language-pack.json?ref={branch}),
// which wraps the file in a base64 envelope. Packages are downloaded from
// the web UI's blob view with ?raw=true.
//
// Tokens are sent as "Authorization: Bearer". Without a token GitHub allows
// 60 requests per hour per address; authenticated requests get 5000.
package github
