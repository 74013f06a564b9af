package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Question is a generated multiple-choice question.
type Question struct {
	ent.Schema
}

func (Question) Mixin() []ent.Mixin {
	return []ent.Mixin{CreatedMixin{}}
}

func (Question) Fields() []ent.Field {
	return []ent.Field{
		field.Text("question"),
		field.Strings("options").
			Comment("Answer choices in display order"),
		field.Text("correct_answer").
			Comment("Text of the correct option"),
		field.Text("explanation").
			Default(""),
		field.String("difficulty"),
		field.String("bloom_level").
			Default(""),
		field.String("category").
			Default(""),
		field.Int("generation_id"),
	}
}

func (Question) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("generation", Generation.Type).
			Ref("questions").
			Field("generation_id").
			Unique().
			Required(),
	}
}

func (Question) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("created_at", "id"),
	}
}
