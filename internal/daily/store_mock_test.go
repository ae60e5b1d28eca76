package daily

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var _ Store = (*storeMock)(nil)

type dayKey struct {
	customerID uuid.UUID
	day        string
}

type taskDayKey struct {
	taskID uuid.UUID
	dayKey
}

type mealKey struct {
	dayKey
	mealType MealType
}

// storeMock keeps everything in memory and enforces the same uniqueness as the schema.
type storeMock struct {
	mutex sync.Mutex

	frequencies     map[uuid.UUID]int
	tasks           map[uuid.UUID]Task
	taskCompletions map[taskDayKey]TaskCompletion
	nutrition       map[dayKey]NutritionDay
	water           map[dayKey]WaterDay
	meals           map[mealKey]*MealCompletion
	menus           map[uuid.UUID]*PlanMenu

	menuLookups int
	err         error
}

func newStoreMock() *storeMock {
	return &storeMock{
		frequencies:     map[uuid.UUID]int{},
		tasks:           map[uuid.UUID]Task{},
		taskCompletions: map[taskDayKey]TaskCompletion{},
		nutrition:       map[dayKey]NutritionDay{},
		water:           map[dayKey]WaterDay{},
		meals:           map[mealKey]*MealCompletion{},
		menus:           map[uuid.UUID]*PlanMenu{},
	}
}

func (s *storeMock) addTask(customerID uuid.UUID, title string, order int, active bool) Task {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	t := Task{ID: uuid.New(), CustomerID: customerID, Title: title, Type: "checkbox", Order: order, IsActive: active}
	s.tasks[t.ID] = t
	return t
}

func (s *storeMock) mealItemsCount(customerID uuid.UUID, day string, mealType MealType) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	mc, ok := s.meals[mealKey{dayKey{customerID, day}, mealType}]
	if !ok {
		return 0
	}
	return len(mc.Items)
}

func inRange(day, from, to string) bool {
	return day >= from && day <= to
}

func (s *storeMock) ActiveTasks(_ context.Context, customerID uuid.UUID) ([]Task, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	tasks := make([]Task, 0)
	for _, t := range s.tasks {
		if t.CustomerID == customerID && t.IsActive {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Order < tasks[j].Order })
	return tasks, nil
}

func (s *storeMock) Task(_ context.Context, customerID, taskID uuid.UUID) (*Task, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.CustomerID != customerID {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *storeMock) TaskCompletions(_ context.Context, customerID uuid.UUID, from, to string) ([]TaskCompletion, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var completions []TaskCompletion
	for k, c := range s.taskCompletions {
		if k.customerID == customerID && inRange(k.day, from, to) {
			completions = append(completions, c)
		}
	}
	return completions, nil
}

func (s *storeMock) NutritionDays(_ context.Context, customerID uuid.UUID, from, to string) ([]NutritionDay, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var days []NutritionDay
	for k, n := range s.nutrition {
		if k.customerID == customerID && inRange(k.day, from, to) {
			days = append(days, n)
		}
	}
	return days, nil
}

func (s *storeMock) WaterDays(_ context.Context, customerID uuid.UUID, from, to string) ([]WaterDay, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var days []WaterDay
	for k, w := range s.water {
		if k.customerID == customerID && inRange(k.day, from, to) {
			days = append(days, w)
		}
	}
	return days, nil
}

func (s *storeMock) MealCompletions(_ context.Context, customerID uuid.UUID, day string) ([]MealCompletion, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var meals []MealCompletion
	for k, mc := range s.meals {
		if k.dayKey != (dayKey{customerID, day}) {
			continue
		}
		cp := *mc
		cp.Items = append([]MealItem(nil), mc.Items...)
		sort.Slice(cp.Items, func(i, j int) bool { return cp.Items[i].Order < cp.Items[j].Order })
		meals = append(meals, cp)
	}
	return meals, nil
}

func (s *storeMock) TrainingFrequency(_ context.Context, customerID uuid.UUID) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.frequencies[customerID], nil
}

func (s *storeMock) ActivePlanMenu(_ context.Context, customerID uuid.UUID) (*PlanMenu, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.menuLookups++
	menu, ok := s.menus[customerID]
	if !ok {
		return nil, ErrNotFound
	}
	return menu, nil
}

func (s *storeMock) UpsertTaskCompletion(_ context.Context, c TaskCompletion) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.err != nil {
		return s.err
	}
	s.taskCompletions[taskDayKey{c.TaskID, dayKey{c.CustomerID, c.Day}}] = c
	return nil
}

func (s *storeMock) DeleteTaskCompletion(_ context.Context, customerID, taskID uuid.UUID, day string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.taskCompletions, taskDayKey{taskID, dayKey{customerID, day}})
	return nil
}

func (s *storeMock) UpsertNutrition(_ context.Context, n NutritionDay) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.nutrition[dayKey{n.CustomerID, n.Day}] = n
	return nil
}

func (s *storeMock) EnsureNutrition(_ context.Context, customerID uuid.UUID, day string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	k := dayKey{customerID, day}
	if _, ok := s.nutrition[k]; !ok {
		s.nutrition[k] = NutritionDay{CustomerID: customerID, Day: day}
	}
	return nil
}

func (s *storeMock) SetNutritionFollowed(_ context.Context, customerID uuid.UUID, day string, followed bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	k := dayKey{customerID, day}
	n := s.nutrition[k]
	n.CustomerID, n.Day, n.Followed = customerID, day, followed
	s.nutrition[k] = n
	return nil
}

func (s *storeMock) UpsertWater(_ context.Context, w WaterDay) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.water[dayKey{w.CustomerID, w.Day}] = w
	return nil
}

func (s *storeMock) EnsureMealCompletion(_ context.Context, customerID uuid.UUID, day string, mealType MealType) (*MealCompletion, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	k := mealKey{dayKey{customerID, day}, mealType}
	mc, ok := s.meals[k]
	if !ok {
		mc = &MealCompletion{ID: uuid.New(), CustomerID: customerID, Day: day, MealType: mealType}
		s.meals[k] = mc
	}
	cp := *mc
	cp.Items = append([]MealItem(nil), mc.Items...)
	return &cp, nil
}

func (s *storeMock) mealByID(id uuid.UUID) *MealCompletion {
	for _, mc := range s.meals {
		if mc.ID == id {
			return mc
		}
	}
	return nil
}

func (s *storeMock) SetMealCompleted(_ context.Context, mealCompletionID uuid.UUID, completed, cascade bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	mc := s.mealByID(mealCompletionID)
	if mc == nil {
		return ErrNotFound
	}
	mc.Completed = completed
	if cascade {
		for i := range mc.Items {
			mc.Items[i].Completed = completed
		}
	}
	return nil
}

func (s *storeMock) SetMealItemCompleted(_ context.Context, itemID uuid.UUID, completed bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, mc := range s.meals {
		for i := range mc.Items {
			if mc.Items[i].ID == itemID {
				mc.Items[i].Completed = completed
				return nil
			}
		}
	}
	return ErrNotFound
}

func (s *storeMock) UpsertMealItem(_ context.Context, item MealItem) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	mc := s.mealByID(item.MealCompletionID)
	if mc == nil {
		return ErrNotFound
	}
	for i := range mc.Items {
		if mc.Items[i].Order == item.Order {
			mc.Items[i].Text = item.Text
			mc.Items[i].Completed = item.Completed
			return nil
		}
	}
	item.ID = uuid.New()
	mc.Items = append(mc.Items, item)
	return nil
}

func (s *storeMock) InTx(_ context.Context, fn func(tx Store) error) error {
	return fn(s)
}

type trainingCounterMock struct {
	sessions map[uuid.UUID]int
}

func (t *trainingCounterMock) CountCompleted(_ context.Context, customerID uuid.UUID, _, _ string) (int, error) {
	return t.sessions[customerID], nil
}
