//go:build integration_test || all_tests

package daily_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/2beens/fitcoach/internal/daily"
	"github.com/2beens/fitcoach/internal/db"
	"github.com/2beens/fitcoach/internal/training"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDBName = "fitcoach_test"

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	dockerPool, err := dockertest.NewPool("")
	if err != nil {
		fmt.Printf("could not create dockertest pool: %s\n", err)
		os.Exit(1)
	}
	if err := dockerPool.Client.Ping(); err != nil {
		fmt.Printf("could not ping docker: %s\n", err)
		os.Exit(1)
	}

	pgResource, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=" + testDBName,
			"POSTGRES_HOST_AUTH_METHOD=trust",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		fmt.Printf("run postgres: %s\n", err)
		os.Exit(1)
	}

	params := db.NewDBPoolParams{
		DBHost: "localhost",
		DBPort: pgResource.GetPort("5432/tcp"),
		DBName: testDBName,
		DBUser: "postgres",
	}

	if err := dockerPool.Retry(func() error {
		sqlDB, err := sql.Open("postgres", db.ConnString(params)+"?sslmode=disable")
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		return sqlDB.Ping()
	}); err != nil {
		_ = pgResource.Close()
		fmt.Printf("postgres not ready: %s\n", err)
		os.Exit(1)
	}

	testPool, err = db.NewDBPool(ctx, params)
	if err == nil {
		err = db.Migrate(ctx, testPool)
	}
	if err != nil {
		_ = pgResource.Close()
		fmt.Printf("setup db: %s\n", err)
		os.Exit(1)
	}

	code := m.Run()

	testPool.Close()
	if err := pgResource.Close(); err != nil {
		fmt.Printf("postgres teardown: %s\n", err)
	}
	os.Exit(code)
}

func addCustomer(t *testing.T, frequency *int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := testPool.Exec(context.Background(), `
		INSERT INTO customer (id, name, email, training_frequency) VALUES ($1, $2, $3, $4)
	`, id, gofakeit.Name(), gofakeit.Email(), frequency)
	require.NoError(t, err)
	return id
}

func addTask(t *testing.T, customerID uuid.UUID, order int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := testPool.Exec(context.Background(), `
		INSERT INTO daily_task (id, customer_id, title, sort_order) VALUES ($1, $2, $3, $4)
	`, id, customerID, gofakeit.HipsterSentence(3), order)
	require.NoError(t, err)
	return id
}

func TestRepo_Tasks(t *testing.T) {
	ctx := context.Background()
	repo := daily.NewRepo(testPool)
	customerID := addCustomer(t, nil)
	second := addTask(t, customerID, 2)
	first := addTask(t, customerID, 1)

	tasks, err := repo.ActiveTasks(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, first, tasks[0].ID)
	assert.Equal(t, second, tasks[1].ID)

	_, err = repo.Task(ctx, addCustomer(t, nil), first)
	assert.ErrorIs(t, err, daily.ErrNotFound)

	value := 3.5
	completion := daily.TaskCompletion{TaskID: first, CustomerID: customerID, Day: "2024-06-01", Completed: true, Value: &value}
	require.NoError(t, repo.UpsertTaskCompletion(ctx, completion))
	completion.Completed = false
	require.NoError(t, repo.UpsertTaskCompletion(ctx, completion))

	completions, err := repo.TaskCompletions(ctx, customerID, "2024-05-26", "2024-06-01")
	require.NoError(t, err)
	require.Len(t, completions, 1)
	assert.False(t, completions[0].Completed)
	assert.Equal(t, "2024-06-01", completions[0].Day)
	require.NotNil(t, completions[0].Value)
	assert.Equal(t, 3.5, *completions[0].Value)

	require.NoError(t, repo.DeleteTaskCompletion(ctx, customerID, first, "2024-06-01"))
	completions, err = repo.TaskCompletions(ctx, customerID, "2024-05-26", "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, completions)
}

func TestRepo_NutritionAndWater(t *testing.T) {
	ctx := context.Background()
	repo := daily.NewRepo(testPool)
	customerID := addCustomer(t, nil)

	require.NoError(t, repo.EnsureNutrition(ctx, customerID, "2024-06-01"))
	require.NoError(t, repo.SetNutritionFollowed(ctx, customerID, "2024-06-01", true))
	// ensure never downgrades an existing row
	require.NoError(t, repo.EnsureNutrition(ctx, customerID, "2024-06-01"))
	notes := "cheat day"
	require.NoError(t, repo.UpsertNutrition(ctx, daily.NutritionDay{CustomerID: customerID, Day: "2024-05-31", Notes: &notes}))

	days, err := repo.NutritionDays(ctx, customerID, "2024-05-26", "2024-06-01")
	require.NoError(t, err)
	require.Len(t, days, 2)
	byDay := map[string]daily.NutritionDay{}
	for _, d := range days {
		byDay[d.Day] = d
	}
	assert.True(t, byDay["2024-06-01"].Followed)
	assert.False(t, byDay["2024-05-31"].Followed)
	require.NotNil(t, byDay["2024-05-31"].Notes)
	assert.Equal(t, notes, *byDay["2024-05-31"].Notes)

	require.NoError(t, repo.UpsertWater(ctx, daily.WaterDay{CustomerID: customerID, Day: "2024-06-01", Amount: 1, Target: 2}))
	require.NoError(t, repo.UpsertWater(ctx, daily.WaterDay{CustomerID: customerID, Day: "2024-06-01", Amount: 2.5, Target: 2}))
	water, err := repo.WaterDays(ctx, customerID, "2024-06-01", "2024-06-01")
	require.NoError(t, err)
	require.Len(t, water, 1)
	assert.Equal(t, 2.5, water[0].Amount)
	assert.True(t, water[0].TargetMet())
}

func TestRepo_Meals(t *testing.T) {
	ctx := context.Background()
	repo := daily.NewRepo(testPool)
	customerID := addCustomer(t, nil)

	mc, err := repo.EnsureMealCompletion(ctx, customerID, "2024-06-01", daily.MealLunch)
	require.NoError(t, err)
	assert.False(t, mc.Completed)
	assert.Empty(t, mc.Items)

	again, err := repo.EnsureMealCompletion(ctx, customerID, "2024-06-01", daily.MealLunch)
	require.NoError(t, err)
	assert.Equal(t, mc.ID, again.ID)

	require.NoError(t, repo.UpsertMealItem(ctx, daily.MealItem{MealCompletionID: mc.ID, Order: 1, Text: "Rice"}))
	require.NoError(t, repo.UpsertMealItem(ctx, daily.MealItem{MealCompletionID: mc.ID, Order: 0, Text: "Chicken", Completed: true}))
	require.NoError(t, repo.UpsertMealItem(ctx, daily.MealItem{MealCompletionID: mc.ID, Order: 1, Text: "Brown rice"}))

	meals, err := repo.MealCompletions(ctx, customerID, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, meals, 1)
	require.Len(t, meals[0].Items, 2)
	assert.Equal(t, "Chicken", meals[0].Items[0].Text)
	assert.True(t, meals[0].Items[0].Completed)
	assert.Equal(t, "Brown rice", meals[0].Items[1].Text)

	require.NoError(t, repo.SetMealItemCompleted(ctx, meals[0].Items[1].ID, true))
	assert.ErrorIs(t, repo.SetMealItemCompleted(ctx, uuid.New(), true), daily.ErrNotFound)

	require.NoError(t, repo.SetMealCompleted(ctx, mc.ID, false, true))
	meals, err = repo.MealCompletions(ctx, customerID, "2024-06-01")
	require.NoError(t, err)
	for _, item := range meals[0].Items {
		assert.False(t, item.Completed)
	}

	empty, err := repo.MealCompletions(ctx, customerID, "2024-06-02")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepo_InTx_Rollback(t *testing.T) {
	ctx := context.Background()
	repo := daily.NewRepo(testPool)
	customerID := addCustomer(t, nil)

	err := repo.InTx(ctx, func(tx daily.Store) error {
		if err := tx.EnsureNutrition(ctx, customerID, "2024-06-01"); err != nil {
			return err
		}
		// unknown customer violates the foreign key and aborts the whole transaction
		return tx.EnsureNutrition(ctx, uuid.New(), "2024-06-01")
	})
	require.Error(t, err)

	days, err := repo.NutritionDays(ctx, customerID, "2024-06-01", "2024-06-01")
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestRepo_PlanMenuAndFrequency(t *testing.T) {
	ctx := context.Background()
	repo := daily.NewRepo(testPool)
	frequency := 4
	customerID := addCustomer(t, &frequency)

	got, err := repo.TrainingFrequency(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, 4, got)
	got, err = repo.TrainingFrequency(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = repo.ActivePlanMenu(ctx, customerID)
	assert.ErrorIs(t, err, daily.ErrNotFound)

	planID := uuid.New()
	var menu daily.WeekMenu
	menu[time.Saturday] = daily.DayMenu{daily.MealLunch: "Chicken, rice", daily.MealBreakfast: "Oats"}
	require.NoError(t, repo.ReplacePlanMenu(ctx, planID, "Cut phase", menu))
	// replacing is idempotent
	require.NoError(t, repo.ReplacePlanMenu(ctx, planID, "Cut phase", menu))

	_, err = testPool.Exec(ctx, `
		INSERT INTO customer_nutrition_plan (id, customer_id, plan_id) VALUES ($1, $2, $3)
	`, uuid.New(), customerID, planID)
	require.NoError(t, err)

	plan, err := repo.ActivePlanMenu(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, planID, plan.PlanID)
	assert.Len(t, plan.Meals, 2)
	assert.Equal(t, "Chicken, rice", plan.MealText(time.Saturday, daily.MealLunch))
	assert.Equal(t, []daily.MealType{daily.MealBreakfast, daily.MealLunch}, plan.PlannedMealTypes(time.Saturday))
}

func TestTrainingRepo_CountCompleted(t *testing.T) {
	ctx := context.Background()
	repo := training.NewRepo(testPool)
	customerID := addCustomer(t, nil)

	for _, s := range []struct {
		day    string
		status training.Status
	}{
		{day: "2024-05-25", status: training.StatusCompleted},
		{day: "2024-05-26", status: training.StatusCompleted},
		{day: "2024-05-28", status: training.StatusCancelled},
		{day: "2024-06-01", status: training.StatusCompleted},
	} {
		startsAt, err := time.Parse(daily.DayLayout, s.day)
		require.NoError(t, err)
		_, err = repo.Add(ctx, training.Session{CustomerID: customerID, StartsAt: startsAt.Add(9 * time.Hour), Day: s.day, Status: s.status})
		require.NoError(t, err)
	}

	_, err := repo.Add(ctx, training.Session{CustomerID: customerID, Day: "2024-06-01", Status: "maybe"})
	require.Error(t, err)

	count, err := repo.CountCompleted(ctx, customerID, "2024-05-26", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
