package redis

import (
	"fmt"

	"github.com/mcoot/partygame/internal/model"
)

// DefaultKeyPrefix namespaces all party game data
const DefaultKeyPrefix = "partygame"

// keyspace builds Redis keys under a deployment prefix
type keyspace string

func newKeyspace(prefix string) keyspace {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return keyspace(prefix)
}

// snapshot returns the key holding one session's snapshot blob
func (k keyspace) snapshot(id model.SessionID) string {
	return fmt.Sprintf("%s:snapshot:%s", k, id)
}

// snapshotIndex returns the key of the SET of known session IDs
func (k keyspace) snapshotIndex() string {
	return fmt.Sprintf("%s:idx:snapshots", k)
}

// catalog returns the key of the challenge catalog HASH (challenge ID -> JSON)
func (k keyspace) catalog() string {
	return fmt.Sprintf("%s:catalog", k)
}
