// Package main hosts the cleanstage CLI entrypoint and command graph.
//
// The root command runs the basic cleaning stage: it resolves the input
// artifact, filters listings by price, normalizes review dates, and publishes
// the cleaned CSV as a new artifact version under a tracked run. Subcommands
// inspect the local artifact store, seed raw artifacts, list runs, and
// scaffold configuration.
//
// Exit status follows the failure classification in internal/failures so
// pipeline orchestrators can tell a bad parameter from a missing artifact.
package main
