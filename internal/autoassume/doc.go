// autoassume
//
// Handles the auto-assume flow: resolving the ambient caller identity,
// self-granting sts:AssumeRole on a target role's trust policy (append-only,
// idempotent, never reverted) and exchanging the updated trust relationship
// for AWS temporary creds.
//
// Intended for iteratively testing IAM policies, not for production use.
package autoassume
