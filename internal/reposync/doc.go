// Package reposync brings one git working tree per enabled service up to date.
//
// Each service is synchronized by an ordered pipeline: read the service
// environment file, prepare the services root, clone or fetch the working tree,
// check out and pull the configured branch, then check out the configured tag.
// The first failing step ends the service's update; other services still run.
package reposync
