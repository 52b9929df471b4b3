// Package store persists identities, roles, permissions and their links.
package store

import "crm/pkg/platform/sentinel"

var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)
