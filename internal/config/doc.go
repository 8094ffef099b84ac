// Package config resolves the runtime server configuration from the settings
// store (server.* keys), environment variables and CLI flags, with precedence
// CLI flags > Environment variables > Settings store > Defaults. Layers are
// merged with mergo so unset values fall through to the layer below.
package config
