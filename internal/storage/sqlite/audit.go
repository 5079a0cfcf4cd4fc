package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kabanhq/kaban/internal/types"
)

// GetHistory returns a page of audit_log rows newest first, matching
// filter. Total counts every matching row regardless of Limit/Offset;
// HasMore reports whether rows remain past the returned page (§4.5).
func (s *Store) GetHistory(ctx context.Context, filter types.HistoryFilter) (types.HistoryPage, error) {
	var page types.HistoryPage

	where := []string{"1 = 1"}
	args := []any{}

	if filter.ObjectType != "" {
		where = append(where, "object_type = ?")
		args = append(args, string(filter.ObjectType))
	}
	if filter.ObjectID != "" {
		where = append(where, "object_id = ?")
		args = append(args, filter.ObjectID)
	}
	if filter.EventType != "" {
		where = append(where, "event_type = ?")
		args = append(args, string(filter.EventType))
	}
	if filter.Actor != "" {
		where = append(where, "actor = ?")
		args = append(args, filter.Actor)
	}
	if filter.Since != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, formatTime(*filter.Since))
	}
	if filter.Until != nil {
		where = append(where, "timestamp <= ?")
		args = append(args, formatTime(*filter.Until))
	}
	whereClause := strings.Join(where, " AND ")

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE `+whereClause, args...,
	).Scan(&page.Total); err != nil {
		return page, wrapDBError("count history", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, timestamp, event_type, object_type, object_id, field_name, old_value, new_value, actor
		FROM audit_log WHERE ` + whereClause + `
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, append(args, limit+1, filter.Offset)...)
	if err != nil {
		return page, wrapDBError("get history", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var e types.AuditEntry
		var ts, eventType, objectType, fieldName, oldValue, newValue, actor sql.NullString
		if err := rows.Scan(&e.ID, &ts, &eventType, &objectType, &e.ObjectID, &fieldName, &oldValue, &newValue, &actor); err != nil {
			return page, wrapDBError("scan history entry", err)
		}
		e.Timestamp = parseTime(ts.String)
		e.EventType = types.EventType(eventType.String)
		e.ObjectType = types.ObjectType(objectType.String)
		e.FieldName = fieldName.String
		e.OldValue = oldValue.String
		e.NewValue = newValue.String
		e.Actor = actor.String
		page.Entries = append(page.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return page, wrapDBError("get history", err)
	}

	if len(page.Entries) > limit {
		page.HasMore = true
		page.Entries = page.Entries[:limit]
	}
	return page, nil
}

// GetStats aggregates audit_log into per-event and per-object-type
// counts plus the 10 most recently active distinct actors (§4.5).
func (s *Store) GetStats(ctx context.Context) (types.Stats, error) {
	stats := types.Stats{
		ByEvent:      make(map[types.EventType]int),
		ByObjectType: make(map[types.ObjectType]int),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT event_type, COUNT(*) FROM audit_log GROUP BY event_type`)
	if err != nil {
		return stats, wrapDBError("stats by event", err)
	}
	for rows.Next() {
		var et string
		var n int
		if err := rows.Scan(&et, &n); err != nil {
			_ = rows.Close()
			return stats, wrapDBError("scan stats by event", err)
		}
		stats.ByEvent[types.EventType(et)] = n
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return stats, wrapDBError("stats by event", err)
	}
	_ = rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT object_type, COUNT(*) FROM audit_log GROUP BY object_type`)
	if err != nil {
		return stats, wrapDBError("stats by object type", err)
	}
	for rows.Next() {
		var ot string
		var n int
		if err := rows.Scan(&ot, &n); err != nil {
			_ = rows.Close()
			return stats, wrapDBError("scan stats by object type", err)
		}
		stats.ByObjectType[types.ObjectType(ot)] = n
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return stats, wrapDBError("stats by object type", err)
	}
	_ = rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT actor FROM audit_log
		WHERE actor IS NOT NULL AND actor != ''
		GROUP BY actor
		ORDER BY MAX(timestamp) DESC
		LIMIT 10
	`)
	if err != nil {
		return stats, wrapDBError("stats recent actors", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var actor string
		if err := rows.Scan(&actor); err != nil {
			return stats, wrapDBError("scan recent actor", err)
		}
		stats.RecentActors = append(stats.RecentActors, actor)
	}
	return stats, rows.Err()
}
