// Package application wires the settings store, HTTP handlers, router and
// server together so the main package only parses flags and orchestrates
// startup and shutdown.
package application
