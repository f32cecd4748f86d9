// Package userdirectory holds directory records for poll creators and voters
// inside the identity-access context.
//
// It trusts the upstream identity provider: passwords pass through as opaque
// values and no credential verification happens here.
package userdirectory
