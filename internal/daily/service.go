package daily

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/fitcoach/internal/calc"
	"github.com/2beens/fitcoach/internal/telemetry/metrics"
	"github.com/2beens/fitcoach/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultWaterTarget = 2.0
	tasksTypeCheckbox  = "checkbox"
)

type Service struct {
	store          Store
	training       trainingCounter
	planCache      *PlanCache
	loc            *time.Location
	now            func() time.Time
	metricsManager *metrics.Manager
}

type NewServiceParams struct {
	Store    Store
	Training trainingCounter
	// PlanCache is optional
	PlanCache      *PlanCache
	Location       *time.Location
	Now            func() time.Time
	MetricsManager *metrics.Manager
}

func NewService(params NewServiceParams) *Service {
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:          params.Store,
		training:       params.Training,
		planCache:      params.PlanCache,
		loc:            loc,
		now:            now,
		metricsManager: params.MetricsManager,
	}
}

func (s *Service) parseDay(raw string) (time.Time, error) {
	day, err := ParseDay(raw, s.loc, s.now())
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Message: err.Error()}
	}
	return day, nil
}

func (s *Service) planMenu(ctx context.Context, customerID uuid.UUID) (*PlanMenu, error) {
	if menu, ok := s.planCache.Get(customerID); ok {
		return menu, nil
	}

	menu, err := s.store.ActivePlanMenu(ctx, customerID)
	if errors.Is(err, ErrNotFound) {
		menu = &PlanMenu{}
	} else if err != nil {
		return nil, fmt.Errorf("active plan menu: %w", err)
	}

	s.planCache.Set(customerID, menu)
	return menu, nil
}

// DailyView aggregates the tracking state of one customer for the day given by date
// together with the stats of the Sunday to Saturday week around it.
func (s *Service) DailyView(ctx context.Context, customerID uuid.UUID, date string) (_ *DailyView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.daily.view")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	day, err := s.parseDay(date)
	if err != nil {
		return nil, err
	}
	week := WeekOf(day)
	dayStr, from, to := FormatDay(day), FormatDay(week[0]), FormatDay(week[6])
	span.SetAttributes(
		attribute.String("customer.id", customerID.String()),
		attribute.String("day", dayStr),
	)

	tasks, err := s.store.ActiveTasks(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("active tasks: %w", err)
	}
	completions, err := s.store.TaskCompletions(ctx, customerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("task completions: %w", err)
	}
	nutritionDays, err := s.store.NutritionDays(ctx, customerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("nutrition days: %w", err)
	}
	waterDays, err := s.store.WaterDays(ctx, customerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("water days: %w", err)
	}
	mealCompletions, err := s.store.MealCompletions(ctx, customerID, dayStr)
	if err != nil {
		return nil, fmt.Errorf("meal completions: %w", err)
	}
	menu, err := s.planMenu(ctx, customerID)
	if err != nil {
		return nil, err
	}
	frequency, err := s.store.TrainingFrequency(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("training frequency: %w", err)
	}
	sessions := 0
	if s.training != nil {
		if sessions, err = s.training.CountCompleted(ctx, customerID, from, to); err != nil {
			return nil, fmt.Errorf("training sessions: %w", err)
		}
	}

	activeTaskIDs := make(map[uuid.UUID]bool, len(tasks))
	for _, t := range tasks {
		activeTaskIDs[t.ID] = true
	}
	// day -> task -> completion, only completed rows of active tasks
	completedByDay := map[string]map[uuid.UUID]TaskCompletion{}
	for _, c := range completions {
		if !c.Completed || !activeTaskIDs[c.TaskID] {
			continue
		}
		if completedByDay[c.Day] == nil {
			completedByDay[c.Day] = map[uuid.UUID]TaskCompletion{}
		}
		completedByDay[c.Day][c.TaskID] = c
	}
	nutritionByDay := make(map[string]NutritionDay, len(nutritionDays))
	for _, n := range nutritionDays {
		nutritionByDay[n.Day] = n
	}
	waterByDay := make(map[string]WaterDay, len(waterDays))
	for _, w := range waterDays {
		waterByDay[w.Day] = w
	}

	view := &DailyView{
		Date:         dayStr,
		Tasks:        make([]TaskView, 0, len(tasks)),
		Nutrition:    NutritionView{},
		Water:        WaterView{Amount: 0, Target: defaultWaterTarget},
		Meals:        buildMeals(menu, day.Weekday(), mealCompletions),
		WeekCalendar: make([]CalendarDay, 0, len(week)),
	}

	for _, t := range tasks {
		tv := TaskView{
			ID:       t.ID,
			Title:    t.Title,
			Type:     t.Type,
			Order:    t.Order,
			IsActive: t.IsActive,
		}
		if tv.Type == "" {
			tv.Type = tasksTypeCheckbox
		}
		if c, ok := completedByDay[dayStr][t.ID]; ok {
			tv.Completed = true
			tv.Value = c.Value
			tv.Notes = c.Notes
		}
		view.Tasks = append(view.Tasks, tv)
	}

	if n, ok := nutritionByDay[dayStr]; ok {
		view.Nutrition = NutritionView{Followed: n.Followed, Notes: n.Notes}
	}
	if w, ok := waterByDay[dayStr]; ok {
		view.Water = WaterView{Amount: w.Amount, Target: w.Target}
	}

	stats := WeeklyStats{
		TotalTasks:        len(tasks),
		TrainingSessions:  sessions,
		TrainingFrequency: frequency,
	}
	if stats.TrainingFrequency <= 0 {
		stats.TrainingFrequency = defaultTrainingFrequency
	}

	for _, d := range week {
		ds := FormatDay(d)
		entry := CalendarDay{
			Date:    ds,
			Weekday: strings.ToLower(d.Weekday().String()),
			IsToday: ds == dayStr,
		}
		if n, ok := nutritionByDay[ds]; ok && n.Followed {
			entry.Nutrition = true
			stats.NutritionDays++
		}
		if w, ok := waterByDay[ds]; ok && w.TargetMet() {
			entry.Water = true
			stats.WaterDays++
		}
		completedTasks := len(completedByDay[ds])
		stats.TaskCompletions += completedTasks
		entry.Tasks = len(tasks) > 0 && completedTasks == len(tasks)
		entry.Complete = entry.Nutrition && entry.Water && entry.Tasks
		view.WeekCalendar = append(view.WeekCalendar, entry)
	}
	stats.ConsistencyScore = ConsistencyScore(stats)
	view.WeeklyStats = stats

	if s.metricsManager != nil {
		s.metricsManager.CounterDailyAggregations.Inc()
	}
	return view, nil
}

func buildMeals(menu *PlanMenu, weekday time.Weekday, completions []MealCompletion) []MealView {
	meals := make([]MealView, 0)
	if !menu.HasPlan() {
		return meals
	}

	byType := make(map[MealType]MealCompletion, len(completions))
	for _, mc := range completions {
		byType[mc.MealType] = mc
	}

	for _, mt := range menu.PlannedMealTypes(weekday) {
		text := menu.MealText(weekday, mt)
		mc := byType[mt]
		meals = append(meals, MealView{
			Type:      mt,
			Label:     mt.Label(),
			Text:      text,
			Completed: mc.Completed,
			Items:     reconcileItems(mt, SplitMealFragments(text), mc.Items),
		})
	}
	return meals
}

// Apply validates and applies one mutation for the customer.
func (s *Service) Apply(ctx context.Context, customerID uuid.UUID, cmd Command) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.daily.apply")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("customer.id", customerID.String()),
		attribute.String("type", cmd.Type),
	)

	if err := cmd.Validate(); err != nil {
		return err
	}
	day, err := s.parseDay(cmd.Date)
	if err != nil {
		return err
	}

	switch cmd.Type {
	case CommandTask:
		err = s.applyTask(ctx, customerID, FormatDay(day), cmd)
	case CommandNutrition:
		err = s.store.UpsertNutrition(ctx, NutritionDay{
			CustomerID: customerID,
			Day:        FormatDay(day),
			Followed:   *cmd.Nutrition.Followed,
			Notes:      cmd.Nutrition.Notes,
		})
	case CommandMeal:
		err = s.applyMeal(ctx, customerID, day, cmd)
	case CommandWater:
		err = s.store.UpsertWater(ctx, WaterDay{
			CustomerID: customerID,
			Day:        FormatDay(day),
			Amount:     *cmd.Water.Amount,
			Target:     *cmd.Water.Target,
		})
	}
	if err != nil {
		return err
	}

	log.Tracef("daily mutation [%s] applied for customer %s on %s", cmd.Type, customerID, FormatDay(day))
	if s.metricsManager != nil {
		s.metricsManager.CounterDailyMutations.WithLabelValues(cmd.Type).Inc()
	}
	return nil
}

func (s *Service) applyTask(ctx context.Context, customerID uuid.UUID, day string, cmd Command) error {
	taskID := uuid.MustParse(cmd.TaskID)
	if _, err := s.store.Task(ctx, customerID, taskID); err != nil {
		return err
	}

	if !*cmd.Completed {
		return s.store.DeleteTaskCompletion(ctx, customerID, taskID, day)
	}
	return s.store.UpsertTaskCompletion(ctx, TaskCompletion{
		TaskID:     taskID,
		CustomerID: customerID,
		Day:        day,
		Completed:  true,
		Value:      cmd.Value,
		Notes:      cmd.Notes,
	})
}

func (s *Service) applyMeal(ctx context.Context, customerID uuid.UUID, day time.Time, cmd Command) error {
	mealType, _ := ParseMealType(cmd.MealType)
	menu, err := s.planMenu(ctx, customerID)
	if err != nil {
		return err
	}
	dayStr := FormatDay(day)
	fragments := SplitMealFragments(menu.MealText(day.Weekday(), mealType))
	completed := *cmd.Completed

	return s.store.InTx(ctx, func(tx Store) error {
		if err := tx.EnsureNutrition(ctx, customerID, dayStr); err != nil {
			return err
		}
		meal, err := tx.EnsureMealCompletion(ctx, customerID, dayStr, mealType)
		if err != nil {
			return err
		}

		ref, err := resolveItemRef(mealType, cmd, meal.Items, fragments)
		if err != nil {
			return err
		}

		if ref == nil {
			// whole meal toggled: cascade to the stored items and materialize the planned ones
			if err := tx.SetMealCompleted(ctx, meal.ID, completed, true); err != nil {
				return err
			}
			for order, fragment := range fragments {
				if err := tx.UpsertMealItem(ctx, MealItem{
					MealCompletionID: meal.ID,
					Order:            order,
					Text:             fragment,
					Completed:        completed,
				}); err != nil {
					return err
				}
			}
		} else {
			if ref.itemID != uuid.Nil {
				err = tx.SetMealItemCompleted(ctx, ref.itemID, completed)
			} else {
				err = tx.UpsertMealItem(ctx, MealItem{
					MealCompletionID: meal.ID,
					Order:            ref.order,
					Text:             ref.text,
					Completed:        completed,
				})
			}
			if err != nil {
				return err
			}

			items, err := mealItems(ctx, tx, customerID, dayStr, mealType)
			if err != nil {
				return err
			}
			mealCompleted := allItemsCompleted(reconcileItems(mealType, fragments, items))
			if err := tx.SetMealCompleted(ctx, meal.ID, mealCompleted, false); err != nil {
				return err
			}
		}

		meals, err := tx.MealCompletions(ctx, customerID, dayStr)
		if err != nil {
			return err
		}
		return tx.SetNutritionFollowed(ctx, customerID, dayStr, nutritionFollowed(menu, day.Weekday(), meals))
	})
}

func mealItems(ctx context.Context, store Store, customerID uuid.UUID, day string, mealType MealType) ([]MealItem, error) {
	meals, err := store.MealCompletions(ctx, customerID, day)
	if err != nil {
		return nil, err
	}
	for _, mc := range meals {
		if mc.MealType == mealType {
			return mc.Items, nil
		}
	}
	return nil, nil
}

// nutritionFollowed is the AND over the day's planned meals,
// or over the stored meal completions when nothing is planned.
func nutritionFollowed(menu *PlanMenu, weekday time.Weekday, meals []MealCompletion) bool {
	byType := make(map[MealType]bool, len(meals))
	for _, mc := range meals {
		byType[mc.MealType] = mc.Completed
	}

	planned := menu.PlannedMealTypes(weekday)
	if len(planned) > 0 {
		for _, mt := range planned {
			if !byType[mt] {
				return false
			}
		}
		return true
	}

	if len(meals) == 0 {
		return false
	}
	for _, mc := range meals {
		if !mc.Completed {
			return false
		}
	}
	return true
}

type itemRef struct {
	// itemID is set when the command points at a stored item
	itemID uuid.UUID
	order  int
	text   string
}

// resolveItemRef finds the meal item a command refers to. A nil ref means the command
// addresses the whole meal.
func resolveItemRef(mealType MealType, cmd Command, items []MealItem, fragments []string) (*itemRef, error) {
	text := strings.TrimSpace(cmd.ItemText)
	if cmd.MealItemID == "" && cmd.ItemOrder == nil && text == "" {
		return nil, nil
	}

	if id, err := uuid.Parse(cmd.MealItemID); err == nil {
		for _, item := range items {
			if item.ID == id {
				return &itemRef{itemID: id, order: item.Order, text: item.Text}, nil
			}
		}
	}

	order, hasOrder := 0, false
	if cmd.ItemOrder != nil {
		order, hasOrder = *cmd.ItemOrder, true
	} else if mt, o, ok := ParseTempItemID(cmd.MealItemID); ok && mt == mealType {
		order, hasOrder = o, true
	}

	if !hasOrder && text != "" {
		if i := indexOf(fragments, text); i >= 0 {
			order, hasOrder = i, true
		} else {
			for _, item := range items {
				if strings.TrimSpace(item.Text) == text {
					return &itemRef{itemID: item.ID, order: item.Order, text: item.Text}, nil
				}
			}
			order, hasOrder = nextItemOrder(fragments, items), true
		}
	}

	if !hasOrder {
		return nil, &ValidationError{
			Field:   "mealItemId",
			Message: fmt.Sprintf("invalid field: mealItemId %q not found, itemOrder or itemText required", cmd.MealItemID),
		}
	}

	if text == "" {
		if order < len(fragments) {
			text = fragments[order]
		} else {
			for _, item := range items {
				if item.Order == order {
					text = item.Text
				}
			}
		}
	}
	if text == "" {
		return nil, missingField("itemText")
	}

	return &itemRef{order: order, text: text}, nil
}

func indexOf(fragments []string, text string) int {
	for i, f := range fragments {
		if f == text {
			return i
		}
	}
	return -1
}

func nextItemOrder(fragments []string, items []MealItem) int {
	next := len(fragments)
	for _, item := range items {
		if item.Order >= next {
			next = item.Order + 1
		}
	}
	return next
}

type ShoppingListView struct {
	PlanID   uuid.UUID           `json:"planId"`
	Items    []calc.ShoppingItem `json:"items"`
	Unparsed []string            `json:"unparsed"`
}

// ShoppingList sums the ingredients of the whole week of the customer's active plan.
func (s *Service) ShoppingList(ctx context.Context, customerID uuid.UUID) (_ *ShoppingListView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.daily.shopping-list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	menu, err := s.planMenu(ctx, customerID)
	if err != nil {
		return nil, err
	}

	view := &ShoppingListView{
		PlanID:   menu.PlanID,
		Items:    []calc.ShoppingItem{},
		Unparsed: []string{},
	}
	if !menu.HasPlan() {
		return view, nil
	}

	var ingredients []calc.ParsedIngredient
	for _, meal := range menu.Meals {
		for _, fragment := range SplitMealFragments(meal.Description) {
			parsed, err := calc.ParseIngredients(fragment)
			var parseFailure *calc.ParseFailure
			switch {
			case err == nil:
				ingredients = append(ingredients, parsed...)
			case errors.Is(err, calc.ErrNoIngredients):
			case errors.As(err, &parseFailure):
				view.Unparsed = append(view.Unparsed, parseFailure.Fragment)
			default:
				return nil, err
			}
		}
	}

	view.Items = calc.ShoppingList(ingredients)
	return view, nil
}
