package training

import (
	"context"
	"fmt"

	"github.com/2beens/fitcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, session Session) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.add")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if !session.Status.IsValid() {
		return nil, fmt.Errorf("invalid session status: %q", session.Status)
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO training_session (id, customer_id, starts_at, day, status, notes)
		VALUES ($1, $2, $3, $4::date, $5, $6)
	`,
		session.ID,
		session.CustomerID,
		session.StartsAt,
		session.Day,
		session.Status,
		session.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CountCompleted counts completed sessions of the customer with day in [from, to], both inclusive.
func (r *Repo) CountCompleted(ctx context.Context, customerID uuid.UUID, from, to string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.count-completed")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("customer.id", customerID.String()),
		attribute.String("from", from),
		attribute.String("to", to),
	)

	var count int
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM training_session
		WHERE customer_id = $1
		  AND status = $2
		  AND day BETWEEN $3::date AND $4::date
	`, customerID, StatusCompleted, from, to).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
