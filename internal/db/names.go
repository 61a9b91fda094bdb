package db

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// namedTables lists the tables whose name column is NOCASE unique
var namedTables = map[string]bool{
	"channels":             true,
	"watermarks":           true,
	"collections":          true,
	"multi_collections":    true,
	"smart_collections":    true,
	"playlists":            true,
	"rerun_collections":    true,
	"program_schedules":    true,
	"block_groups":         true,
	"blocks":               true,
	"template_groups":      true,
	"templates":            true,
	"deco_groups":          true,
	"decos":                true,
	"deco_template_groups": true,
	"deco_templates":       true,
	"filler_presets":       true,
}

// UniqueName returns name unchanged when no row of table already uses it
// (compared case-insensitively). Otherwise it returns "name (n)" for the
// smallest n >= 1 that is free, so inserting "News", "news" and "NEWS"
// stores "News", "news (1)" and "NEWS (2)".
func UniqueName(ctx context.Context, tx *gorm.DB, table, name string) (string, error) {
	if !namedTables[table] {
		return "", fmt.Errorf("%w: table %q has no unique name column", ErrInvalidInput, table)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	var taken []string
	err := tx.WithContext(ctx).
		Table(table).
		Where("lower(name) = lower(?) OR lower(name) LIKE lower(?) ESCAPE '\\'", name, escapeLike(name)+" (%)").
		Pluck("name", &taken).Error
	if err != nil {
		return "", fmt.Errorf("failed to check name %q: %w", name, MapGormError(err))
	}

	used := make(map[string]bool, len(taken))
	for _, t := range taken {
		used[strings.ToLower(t)] = true
	}
	if !used[strings.ToLower(name)] {
		return name, nil
	}

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if !used[strings.ToLower(candidate)] {
			return candidate, nil
		}
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
