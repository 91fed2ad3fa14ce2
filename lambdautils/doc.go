// Package lambdautils configures logging for the chat lambdas and tags log
// entries with the invocation they belong to.
package lambdautils
