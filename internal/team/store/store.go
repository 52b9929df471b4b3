// Package store reads teams, their memberships and the users behind them.
package store

import "crm/pkg/platform/sentinel"

var ErrNotFound = sentinel.ErrNotFound
