package migrations

// Sample prompts are inserted from Go so the placeholders can be rebound
// per driver and the ids generated like every other prompt id.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upSeedSamplePrompts, downSeedSamplePrompts)
}

// SamplePrompts ship with every new library.
var SamplePrompts = []struct {
	Name    string
	Content string
}{
	{
		Name: "Customer Welcome",
		Content: "# Hello {{ user.name }}!\n\n" +
			"{% if user.is_premium %}\nThank you for being a premium user!\n{% else %}\nConsider upgrading to premium.\n{% endif %}\n\n" +
			"Your items:\n{% for item in items %}\n- {{ item.name }}: {{ item.description }}\n{% endfor %}\n\n" +
			"Your score: {{ score }}/100",
	},
	{
		Name: "Product Feedback",
		Content: "# Product Feedback from {{ user.name }}\n\n" +
			"Product: {{ product.name }}\nRating: {{ feedback.rating }}/5\n\n" +
			"{% if feedback.rating >= 4 %}\nThank you for your positive feedback!\n{% else %}\n" +
			"We're sorry to hear you had a less than ideal experience.\n{% endif %}\n\n" +
			"Your comments: {{ feedback.comments }}",
	},
	{
		Name: "Order Confirmation",
		Content: "# Order Confirmation\n\nDear {{ customer.name }},\n\n" +
			"Your order #{{ order.id }} has been confirmed.\n\n" +
			"{% for item in order.items %}\n- {{ item.quantity }}x {{ item.name }} at ${{ item.price }}\n{% endfor %}\n\n" +
			"Total: ${{ order.total }}",
	},
}

func upSeedSamplePrompts(ctx context.Context, tx *sql.Tx) error {
	insert := sqlx.Rebind(sqlx.BindType(dialect),
		`INSERT INTO prompts (id, name, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`)
	now := time.Now().UTC()
	for _, p := range SamplePrompts {
		if _, err := tx.ExecContext(ctx, insert, uuid.New().String(), p.Name, p.Content, now, now); err != nil {
			return fmt.Errorf("seed %q: %w", p.Name, err)
		}
	}
	return nil
}

func downSeedSamplePrompts(ctx context.Context, tx *sql.Tx) error {
	del := sqlx.Rebind(sqlx.BindType(dialect), `DELETE FROM prompts WHERE name = ?`)
	for _, p := range SamplePrompts {
		if _, err := tx.ExecContext(ctx, del, p.Name); err != nil {
			return err
		}
	}
	return nil
}
