// Package store persists conversation ownership.
package store

import "crm/pkg/platform/sentinel"

var ErrNotFound = sentinel.ErrNotFound
