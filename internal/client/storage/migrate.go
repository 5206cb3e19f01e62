package storage

import (
	"context"
	"fmt"
	"strconv"
)

// Migrate brings the stored layout up to SchemaVersion.
//
// v0 -> v1: the single legacy access token is folded into the per-table map
// under legacyTable when one is configured and that table has no token yet;
// otherwise it is dropped, since its table cannot be known.
func (s *Store) Migrate(ctx context.Context, legacyTable string) error {
	raw, err := s.String(ctx, KeySchemaVersion)
	if err != nil {
		return err
	}
	version := 0
	if raw != "" {
		if version, err = strconv.Atoi(raw); err != nil {
			return fmt.Errorf("decode %s: %w", KeySchemaVersion, err)
		}
	}
	if version >= SchemaVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateLegacyToken(ctx, legacyTable); err != nil {
			return err
		}
	}

	return s.SetString(ctx, KeySchemaVersion, strconv.Itoa(SchemaVersion))
}

func (s *Store) migrateLegacyToken(ctx context.Context, legacyTable string) error {
	legacy, err := s.String(ctx, KeyLegacyBaseToken)
	if err != nil || legacy == "" {
		return err
	}

	if legacyTable != "" {
		tokens, err := s.TokenMap(ctx)
		if err != nil {
			return err
		}
		if tokens[legacyTable] == "" {
			tokens[legacyTable] = legacy
			if err := s.SetTokenMap(ctx, tokens); err != nil {
				return err
			}
			s.log.Info(ctx, "migrated legacy access token", "table", legacyTable)
		}
	} else {
		s.log.Info(ctx, "dropping legacy access token without table id")
	}

	return s.Delete(ctx, KeyLegacyBaseToken)
}
