// Package schema holds the ent definitions of the SQLite tables.
// internal/store builds its migration tables from them at startup.
package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// CreatedMixin stamps rows with their insert time. Rows are append-only.
type CreatedMixin struct {
	mixin.Schema
}

func (CreatedMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Time("created_at").
			Default(time.Now).
			Immutable().
			Comment("UTC time the row was written"),
	}
}
