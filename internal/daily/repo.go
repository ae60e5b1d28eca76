package daily

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var _ Store = (*Repo)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repo struct {
	db   querier
	inTx bool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) InTx(ctx context.Context, fn func(tx Store) error) (err error) {
	if r.inTx {
		return fn(r)
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.tx")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	return fn(&Repo{db: tx, inTx: true})
}

func (r *Repo) ActiveTasks(ctx context.Context, customerID uuid.UUID) (_ []Task, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.active-tasks")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("customer.id", customerID.String()))

	rows, err := r.db.Query(ctx, `
		SELECT id, customer_id, title, type, sort_order, is_active
		FROM daily_task
		WHERE customer_id = $1 AND is_active
		ORDER BY sort_order, created_at
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Title, &t.Type, &t.Order, &t.IsActive); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *Repo) Task(ctx context.Context, customerID, taskID uuid.UUID) (_ *Task, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.task")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var t Task
	err = r.db.QueryRow(ctx, `
		SELECT id, customer_id, title, type, sort_order, is_active
		FROM daily_task
		WHERE id = $1 AND customer_id = $2
	`, taskID, customerID).Scan(&t.ID, &t.CustomerID, &t.Title, &t.Type, &t.Order, &t.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) TaskCompletions(ctx context.Context, customerID uuid.UUID, from, to string) (_ []TaskCompletion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.task-completions")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, `
		SELECT task_id, customer_id, day::text, completed, value, notes
		FROM daily_task_completion
		WHERE customer_id = $1 AND day BETWEEN $2::date AND $3::date
	`, customerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completions := make([]TaskCompletion, 0)
	for rows.Next() {
		var c TaskCompletion
		if err := rows.Scan(&c.TaskID, &c.CustomerID, &c.Day, &c.Completed, &c.Value, &c.Notes); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

func (r *Repo) NutritionDays(ctx context.Context, customerID uuid.UUID, from, to string) (_ []NutritionDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.nutrition-days")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, `
		SELECT customer_id, day::text, followed, notes
		FROM daily_nutrition_tracking
		WHERE customer_id = $1 AND day BETWEEN $2::date AND $3::date
	`, customerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]NutritionDay, 0)
	for rows.Next() {
		var d NutritionDay
		if err := rows.Scan(&d.CustomerID, &d.Day, &d.Followed, &d.Notes); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *Repo) WaterDays(ctx context.Context, customerID uuid.UUID, from, to string) (_ []WaterDay, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.water-days")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, `
		SELECT customer_id, day::text, amount, target
		FROM daily_water_tracking
		WHERE customer_id = $1 AND day BETWEEN $2::date AND $3::date
	`, customerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]WaterDay, 0)
	for rows.Next() {
		var d WaterDay
		if err := rows.Scan(&d.CustomerID, &d.Day, &d.Amount, &d.Target); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *Repo) MealCompletions(ctx context.Context, customerID uuid.UUID, day string) (_ []MealCompletion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.meal-completions")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("day", day))

	rows, err := r.db.Query(ctx, `
		SELECT mc.id, mc.customer_id, mc.day::text, mc.meal_type, mc.completed,
		       mi.id, mi.item_order, mi.item_text, mi.completed
		FROM daily_meal_completion mc
		LEFT JOIN daily_meal_item mi ON mi.meal_completion_id = mc.id
		WHERE mc.customer_id = $1 AND mc.day = $2::date
		ORDER BY mc.meal_type, mi.item_order
	`, customerID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := make([]MealCompletion, 0)
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			mc            MealCompletion
			itemID        *uuid.UUID
			itemOrder     *int
			itemText      *string
			itemCompleted *bool
		)
		if err := rows.Scan(
			&mc.ID, &mc.CustomerID, &mc.Day, &mc.MealType, &mc.Completed,
			&itemID, &itemOrder, &itemText, &itemCompleted,
		); err != nil {
			return nil, err
		}

		i, ok := index[mc.ID]
		if !ok {
			meals = append(meals, mc)
			i = len(meals) - 1
			index[mc.ID] = i
		}
		if itemID == nil {
			continue
		}
		meals[i].Items = append(meals[i].Items, MealItem{
			ID:               *itemID,
			MealCompletionID: mc.ID,
			Order:            *itemOrder,
			Text:             *itemText,
			Completed:        *itemCompleted,
		})
	}
	return meals, rows.Err()
}

func (r *Repo) TrainingFrequency(ctx context.Context, customerID uuid.UUID) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.training-frequency")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var frequency *int
	err = r.db.QueryRow(ctx, `
		SELECT training_frequency FROM customer WHERE id = $1
	`, customerID).Scan(&frequency)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if frequency == nil {
		return 0, nil
	}
	return *frequency, nil
}

func (r *Repo) ActivePlanMenu(ctx context.Context, customerID uuid.UUID) (_ *PlanMenu, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.active-plan-menu")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	menu := &PlanMenu{Meals: []PlannedMeal{}}
	err = r.db.QueryRow(ctx, `
		SELECT plan_id
		FROM customer_nutrition_plan
		WHERE customer_id = $1 AND status = 'active'
		ORDER BY assigned_at DESC
		LIMIT 1
	`, customerID).Scan(&menu.PlanID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT weekday, meal_type, description
		FROM nutrition_plan_meal
		WHERE plan_id = $1
		ORDER BY weekday
	`, menu.PlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m       PlannedMeal
			weekday int16
		)
		if err := rows.Scan(&weekday, &m.MealType, &m.Description); err != nil {
			return nil, err
		}
		m.Weekday = time.Weekday(weekday)
		menu.Meals = append(menu.Meals, m)
	}
	return menu, rows.Err()
}

// ReplacePlanMenu swaps the tagged menu rows of a plan, creating the plan when missing.
func (r *Repo) ReplacePlanMenu(ctx context.Context, planID uuid.UUID, planName string, menu WeekMenu) (err error) {
	return r.InTx(ctx, func(tx Store) error {
		q := tx.(*Repo).db
		if _, err := q.Exec(ctx, `
			INSERT INTO nutrition_plan (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		`, planID, planName); err != nil {
			return err
		}
		if _, err := q.Exec(ctx, `DELETE FROM nutrition_plan_meal WHERE plan_id = $1`, planID); err != nil {
			return err
		}
		for _, row := range menu.Rows() {
			if _, err := q.Exec(ctx, `
				INSERT INTO nutrition_plan_meal (plan_id, weekday, meal_type, description)
				VALUES ($1, $2, $3, $4)
			`, planID, int16(row.Weekday), row.MealType, row.Description); err != nil {
				return fmt.Errorf("insert %s %s: %w", row.Weekday, row.MealType, err)
			}
		}
		return nil
	})
}

func (r *Repo) UpsertTaskCompletion(ctx context.Context, c TaskCompletion) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.upsert-task-completion")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(ctx, `
		INSERT INTO daily_task_completion (id, task_id, customer_id, day, completed, value, notes, completed_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, now())
		ON CONFLICT ON CONSTRAINT uq_daily_task_completion DO UPDATE
		SET completed = EXCLUDED.completed,
		    value = EXCLUDED.value,
		    notes = EXCLUDED.notes,
		    completed_at = EXCLUDED.completed_at
	`, uuid.New(), c.TaskID, c.CustomerID, c.Day, c.Completed, c.Value, c.Notes)
	return err
}

func (r *Repo) DeleteTaskCompletion(ctx context.Context, customerID, taskID uuid.UUID, day string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.delete-task-completion")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(ctx, `
		DELETE FROM daily_task_completion
		WHERE task_id = $1 AND customer_id = $2 AND day = $3::date
	`, taskID, customerID, day)
	return err
}

func (r *Repo) UpsertNutrition(ctx context.Context, n NutritionDay) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.upsert-nutrition")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(ctx, `
		INSERT INTO daily_nutrition_tracking (id, customer_id, day, followed, notes)
		VALUES ($1, $2, $3::date, $4, $5)
		ON CONFLICT ON CONSTRAINT uq_daily_nutrition_tracking DO UPDATE
		SET followed = EXCLUDED.followed,
		    notes = EXCLUDED.notes
	`, uuid.New(), n.CustomerID, n.Day, n.Followed, n.Notes)
	return err
}

func (r *Repo) EnsureNutrition(ctx context.Context, customerID uuid.UUID, day string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.ensure-nutrition")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(ctx, `
		INSERT INTO daily_nutrition_tracking (id, customer_id, day, followed)
		VALUES ($1, $2, $3::date, FALSE)
		ON CONFLICT ON CONSTRAINT uq_daily_nutrition_tracking DO NOTHING
	`, uuid.New(), customerID, day)
	return err
}

func (r *Repo) SetNutritionFollowed(ctx context.Context, customerID uuid.UUID, day string, followed bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.set-nutrition-followed")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(ctx, `
		INSERT INTO daily_nutrition_tracking (id, customer_id, day, followed)
		VALUES ($1, $2, $3::date, $4)
		ON CONFLICT ON CONSTRAINT uq_daily_nutrition_tracking DO UPDATE
		SET followed = EXCLUDED.followed
	`, uuid.New(), customerID, day, followed)
	return err
}

func (r *Repo) UpsertWater(ctx context.Context, w WaterDay) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.upsert-water")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(ctx, `
		INSERT INTO daily_water_tracking (id, customer_id, day, amount, target)
		VALUES ($1, $2, $3::date, $4, $5)
		ON CONFLICT ON CONSTRAINT uq_daily_water_tracking DO UPDATE
		SET amount = EXCLUDED.amount,
		    target = EXCLUDED.target
	`, uuid.New(), w.CustomerID, w.Day, w.Amount, w.Target)
	return err
}

func (r *Repo) EnsureMealCompletion(ctx context.Context, customerID uuid.UUID, day string, mealType MealType) (_ *MealCompletion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.ensure-meal-completion")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("meal.type", mealType.String()))

	// the no-op update makes RETURNING yield the existing row on conflict
	mc := &MealCompletion{}
	err = r.db.QueryRow(ctx, `
		INSERT INTO daily_meal_completion (id, customer_id, day, meal_type, completed)
		VALUES ($1, $2, $3::date, $4, FALSE)
		ON CONFLICT ON CONSTRAINT uq_daily_meal_completion DO UPDATE
		SET meal_type = EXCLUDED.meal_type
		RETURNING id, customer_id, day::text, meal_type, completed
	`, uuid.New(), customerID, day, mealType).Scan(&mc.ID, &mc.CustomerID, &mc.Day, &mc.MealType, &mc.Completed)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, meal_completion_id, item_order, item_text, completed
		FROM daily_meal_item
		WHERE meal_completion_id = $1
		ORDER BY item_order
	`, mc.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item MealItem
		if err := rows.Scan(&item.ID, &item.MealCompletionID, &item.Order, &item.Text, &item.Completed); err != nil {
			return nil, err
		}
		mc.Items = append(mc.Items, item)
	}
	return mc, rows.Err()
}

func (r *Repo) SetMealCompleted(ctx context.Context, mealCompletionID uuid.UUID, completed, cascade bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.set-meal-completed")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if _, err = r.db.Exec(ctx, `
		UPDATE daily_meal_completion SET completed = $2 WHERE id = $1
	`, mealCompletionID, completed); err != nil {
		return err
	}
	if !cascade {
		return nil
	}
	_, err = r.db.Exec(ctx, `
		UPDATE daily_meal_item SET completed = $2 WHERE meal_completion_id = $1
	`, mealCompletionID, completed)
	return err
}

func (r *Repo) SetMealItemCompleted(ctx context.Context, itemID uuid.UUID, completed bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.set-meal-item-completed")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tag, err := r.db.Exec(ctx, `
		UPDATE daily_meal_item SET completed = $2 WHERE id = $1
	`, itemID, completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) UpsertMealItem(ctx context.Context, item MealItem) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.daily.upsert-meal-item")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(ctx, `
		INSERT INTO daily_meal_item (id, meal_completion_id, item_order, item_text, completed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT uq_daily_meal_item DO UPDATE
		SET item_text = EXCLUDED.item_text,
		    completed = EXCLUDED.completed
	`, uuid.New(), item.MealCompletionID, item.Order, item.Text, item.Completed)
	return err
}
