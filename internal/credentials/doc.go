// Package credentials discovers a locally stored GitHub token.
//
// Tokens are looked up by an ordered chain of probes. The first probe that
// yields a non-empty token wins; later probes are never run.
//
// Search order:
//
//  1. `gh auth token` (GitHub CLI, reads the system keyring)
//  2. gh hosts.yml ($GH_CONFIG_DIR, $XDG_CONFIG_HOME/gh or ~/.config/gh)
//  3. github-copilot/hosts.json (editor plugins)
//  4. github-copilot/apps.json (editor plugins)
//  5. github-copilot/oauth.json (editor plugins)
//  6. manual token from the copilotmeter config
//
// A missing file, a missing executable or unparseable content is not an
// error: the probe simply reports nothing and the chain moves on.
//
// Example usage:
//
//	r := credentials.NewResolver(credentials.DefaultProbes(credentials.Options{
//	    Paths: credentials.DefaultPaths(),
//	})...)
//	res, err := r.Resolve(ctx)
//	if errors.Is(err, credentials.ErrNoCredentials) {
//	    // show setup instructions
//	}
package credentials
