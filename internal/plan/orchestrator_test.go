package plan

import (
	"context"
	"errors"
	"testing"

	"github.com/adwaidhmp/backend/app"
	"github.com/adwaidhmp/backend/internal/generator"
	"github.com/adwaidhmp/backend/internal/model"
	"github.com/adwaidhmp/backend/internal/repo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeStore struct {
	plan        *model.Plan
	readyCalls  int
	failedCalls int
	payload     datatypes.JSON
	version     string
}

func (s *fakeStore) GetByID(ctx context.Context, planID uuid.UUID) (*model.Plan, error) {
	if s.plan == nil || s.plan.ID != planID {
		return nil, nil
	}
	copy := *s.plan
	return &copy, nil
}

func (s *fakeStore) MarkReady(ctx context.Context, planID uuid.UUID, payload datatypes.JSON, version string) error {
	if s.plan.Status != model.PlanStatusPending {
		return repo.ErrNotPending
	}
	s.readyCalls++
	s.plan.Status = model.PlanStatusReady
	s.payload = payload
	s.version = version
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, planID uuid.UUID) error {
	if s.plan.Status != model.PlanStatusPending {
		return repo.ErrNotPending
	}
	s.failedCalls++
	s.plan.Status = model.PlanStatusFailed
	return nil
}

type fakeProfiles struct {
	profile *model.UserProfile
	err     error
}

func (f *fakeProfiles) Snapshot(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	return f.profile, f.err
}

type fakeGenerator struct {
	diet       *generator.DietResponse
	workout    *generator.WorkoutResponse
	err        error
	dietReqs   []generator.DietRequest
	workoutReq []generator.WorkoutRequest
}

func (g *fakeGenerator) GenerateDiet(ctx context.Context, req generator.DietRequest) (*generator.DietResponse, error) {
	g.dietReqs = append(g.dietReqs, req)
	return g.diet, g.err
}

func (g *fakeGenerator) GenerateWorkout(ctx context.Context, req generator.WorkoutRequest) (*generator.WorkoutResponse, error) {
	g.workoutReq = append(g.workoutReq, req)
	return g.workout, g.err
}

type fakeNotifier struct {
	calls []uuid.UUID
}

func (n *fakeNotifier) PlanReady(userID uuid.UUID, plan *model.Plan) {
	n.calls = append(n.calls, userID)
}

func genConfig() *app.GeneratorConfig {
	return &app.GeneratorConfig{
		ExerciseCount:    5,
		MinDurationMin:   20,
		MaxDurationMin:   60,
		DailyCaloriesMin: 1200,
		DailyCaloriesMax: 4000,
	}
}

func pendingPlan(kind string) *model.Plan {
	p := &model.Plan{
		UserID: uuid.New(),
		Kind:   kind,
		Status: model.PlanStatusPending,
	}
	p.ID = uuid.New()
	return p
}

func testProfile() *model.UserProfile {
	return &model.UserProfile{
		UserID:        uuid.New(),
		Gender:        "male",
		HeightCm:      180,
		WeightKg:      85,
		Goal:          "lose_weight",
		ActivityLevel: "moderate",
		Experience:    "beginner",
	}
}

func validWorkoutResponse() *generator.WorkoutResponse {
	return &generator.WorkoutResponse{
		Version: "v1",
		Sessions: []generator.Session{{
			Name: "Full body",
			Exercises: []generator.Exercise{
				{Name: "Jumping jacks", DurationSec: 300, Intensity: "medium"},
				{Name: "Squats", DurationSec: 300, Intensity: "high"},
				{Name: "Push ups", DurationSec: 300, Intensity: "high"},
				{Name: "Plank", DurationSec: 300, Intensity: "medium"},
				{Name: "Stretching", DurationSec: 300, Intensity: "low"},
			},
		}},
	}
}

func TestRunWorkoutReady(t *testing.T) {
	store := &fakeStore{plan: pendingPlan(model.PlanKindWorkout)}
	gen := &fakeGenerator{workout: validWorkoutResponse()}
	notifier := &fakeNotifier{}
	o := NewOrchestrator(store, &fakeProfiles{profile: testProfile()}, gen, notifier, genConfig())

	err := o.Run(context.Background(), store.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanStatusReady, store.plan.Status)
	assert.Equal(t, 1, store.readyCalls)
	assert.Equal(t, "v1", store.version)
	assert.JSONEq(t, `{
		"sessions":[{"name":"Full body","exercises":[
			{"name":"Jumping jacks","duration_sec":300,"intensity":"medium"},
			{"name":"Squats","duration_sec":300,"intensity":"high"},
			{"name":"Push ups","duration_sec":300,"intensity":"high"},
			{"name":"Plank","duration_sec":300,"intensity":"medium"},
			{"name":"Stretching","duration_sec":300,"intensity":"low"}]}],
		"weekly_duration_min":175
	}`, string(store.payload))
	assert.Len(t, notifier.calls, 1)

	require.Len(t, gen.workoutReq, 1)
	assert.Equal(t, "mixed", gen.workoutReq[0].WorkoutType)
	assert.Equal(t, 5, gen.workoutReq[0].ExerciseCount)
}

func TestRunWorkoutInvalidResponseFails(t *testing.T) {
	resp := validWorkoutResponse()
	resp.Sessions[0].Exercises = resp.Sessions[0].Exercises[:4]

	store := &fakeStore{plan: pendingPlan(model.PlanKindWorkout)}
	o := NewOrchestrator(store, &fakeProfiles{profile: testProfile()}, &fakeGenerator{workout: resp}, nil, genConfig())

	err := o.Run(context.Background(), store.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanStatusFailed, store.plan.Status)
	assert.Equal(t, 1, store.failedCalls)

	// a rerun of the same job finds the terminal state and does nothing
	err = o.Run(context.Background(), store.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.failedCalls)
}

func TestRunDietReady(t *testing.T) {
	store := &fakeStore{plan: pendingPlan(model.PlanKindDiet)}
	gen := &fakeGenerator{diet: &generator.DietResponse{
		DailyCalories: 1800,
		Macros:        generator.Macros{ProteinG: 120, CarbsG: 180, FatG: 60},
		Meals: []generator.Meal{
			{Type: "breakfast", Name: "Oatmeal", Calories: 400},
			{Type: "lunch", Name: "Chicken salad", Calories: 700},
			{Type: "dinner", Name: "Salmon and rice", Calories: 700},
		},
		Version: "v1",
	}}
	o := NewOrchestrator(store, &fakeProfiles{profile: testProfile()}, gen, nil, genConfig())

	err := o.Run(context.Background(), store.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanStatusReady, store.plan.Status)

	require.Len(t, gen.dietReqs, 1)
	assert.Equal(t, "normal", gen.dietReqs[0].DietMode)
	assert.Equal(t, 1200, gen.dietReqs[0].DailyCaloriesMin)
}

func TestRunDietMedicalSafeMode(t *testing.T) {
	profile := testProfile()
	profile.MedicalConditions = datatypes.JSON([]byte(`["diabetes"]`))

	store := &fakeStore{plan: pendingPlan(model.PlanKindDiet)}
	gen := &fakeGenerator{err: &generator.ContractError{Reason: "boom"}}
	o := NewOrchestrator(store, &fakeProfiles{profile: profile}, gen, nil, genConfig())

	err := o.Run(context.Background(), store.plan.ID)
	require.NoError(t, err)
	require.Len(t, gen.dietReqs, 1)
	assert.Equal(t, "medical_safe", gen.dietReqs[0].DietMode)
	assert.Equal(t, []string{"diabetes"}, gen.dietReqs[0].MedicalConditions)
}

func TestRunContractErrorFailsPlan(t *testing.T) {
	store := &fakeStore{plan: pendingPlan(model.PlanKindWorkout)}
	gen := &fakeGenerator{err: &generator.ContractError{Reason: "wrong shape"}}
	o := NewOrchestrator(store, &fakeProfiles{profile: testProfile()}, gen, nil, genConfig())

	err := o.Run(context.Background(), store.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanStatusFailed, store.plan.Status)
}

func TestRunTransientErrorIsReturned(t *testing.T) {
	store := &fakeStore{plan: pendingPlan(model.PlanKindWorkout)}
	gen := &fakeGenerator{err: generator.ErrUnavailable}
	o := NewOrchestrator(store, &fakeProfiles{profile: testProfile()}, gen, nil, genConfig())

	err := o.Run(context.Background(), store.plan.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generator.ErrUnavailable))
	// plan untouched so a retry still finds pending
	assert.Equal(t, model.PlanStatusPending, store.plan.Status)
}

func TestRunUnknownPlanDropsJob(t *testing.T) {
	store := &fakeStore{}
	o := NewOrchestrator(store, &fakeProfiles{}, &fakeGenerator{}, nil, genConfig())

	err := o.Run(context.Background(), uuid.New())
	assert.NoError(t, err)
}

func TestRunMissingProfileFailsPlan(t *testing.T) {
	store := &fakeStore{plan: pendingPlan(model.PlanKindDiet)}
	o := NewOrchestrator(store, &fakeProfiles{profile: nil}, &fakeGenerator{}, nil, genConfig())

	err := o.Run(context.Background(), store.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanStatusFailed, store.plan.Status)
}

func TestRunRequestedWorkoutTypeIsForwarded(t *testing.T) {
	p := pendingPlan(model.PlanKindWorkout)
	p.WorkoutType = "cardio"
	store := &fakeStore{plan: p}
	gen := &fakeGenerator{workout: validWorkoutResponse()}
	o := NewOrchestrator(store, &fakeProfiles{profile: testProfile()}, gen, nil, genConfig())

	require.NoError(t, o.Run(context.Background(), p.ID))
	require.Len(t, gen.workoutReq, 1)
	assert.Equal(t, "cardio", gen.workoutReq[0].WorkoutType)
}
