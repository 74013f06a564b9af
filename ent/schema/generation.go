package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Generation is one stored batch of questions.
type Generation struct {
	ent.Schema
}

func (Generation) Mixin() []ent.Mixin {
	return []ent.Mixin{CreatedMixin{}}
}

func (Generation) Fields() []ent.Field {
	return []ent.Field{
		field.String("difficulty").
			Comment("Requested difficulty, including mixed"),
		field.String("provider").
			Default(""),
		field.String("model").
			Default(""),
		field.Int("question_count"),
	}
}

func (Generation) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("questions", Question.Type),
	}
}
