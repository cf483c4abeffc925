// Package cli implements the operator command line of the movie search
// server: user management, a read-only database viewer, environment checks
// and secret generation.
package cli
