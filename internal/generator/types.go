package generator

// DietRequest is the profile snapshot plus constraints sent to the diet
// generator. Fields mirror what the generator's guardrails require.
type DietRequest struct {
	DOB               string   `json:"dob"`
	Gender            string   `json:"gender"`
	HeightCm          float64  `json:"height_cm"`
	WeightKg          float64  `json:"weight_kg"`
	Goal              string   `json:"goal"`
	ActivityLevel     string   `json:"activity_level"`
	DietConstraints   []string `json:"diet_constraints"`
	Allergies         []string `json:"allergies"`
	MedicalConditions []string `json:"medical_conditions"`
	DietMode          string   `json:"diet_mode"`

	DailyCaloriesMin int `json:"daily_calories_min"`
	DailyCaloriesMax int `json:"daily_calories_max"`
}

type Macros struct {
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

type Meal struct {
	Type     string `json:"type"` // breakfast, lunch, dinner
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

type DietResponse struct {
	DailyCalories int    `json:"daily_calories"`
	Macros        Macros `json:"macros"`
	Meals         []Meal `json:"meals"`
	Version       string `json:"version"`
}

type WorkoutRequest struct {
	Goal           string `json:"goal"`
	Experience     string `json:"experience"`
	ActivityLevel  string `json:"activity_level"`
	WorkoutType    string `json:"workout_type"`
	ExerciseCount  int    `json:"exercise_count"`
	MinDurationMin int    `json:"min_duration"`
	MaxDurationMin int    `json:"max_duration"`
}

type Exercise struct {
	Name        string `json:"name"`
	DurationSec int    `json:"duration_sec"`
	Intensity   string `json:"intensity"` // low, medium, high
}

type Session struct {
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

type WorkoutResponse struct {
	Sessions []Session `json:"sessions"`
	Version  string    `json:"version"`
}
