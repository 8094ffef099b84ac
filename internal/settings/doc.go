// Package settings loads application settings from a bundled properties
// resource, optionally overlaid by an external file named in APP_CONFIG, and
// exposes typed accessors with placeholder substitution. A Store is immutable
// once loaded and safe for concurrent use. Default returns a process-wide
// Store that is loaded lazily, at most once.
package settings
