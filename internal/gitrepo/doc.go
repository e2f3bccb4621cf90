// Package gitrepo contains pure helpers for preparing git remotes.
//
// It rewrites HTTPS remotes to carry credentials, derives the askpass
// environment handed to git subprocesses, and redacts credential-bearing
// remotes before they reach log output.
package gitrepo
