package model

import "time"

// MasteryThreshold is the number of consecutive all-correct days required
// before a goal is promoted to maintenance.
const MasteryThreshold = 3

// GoalStatus represents the mastery lifecycle state of a goal.
type GoalStatus string

const (
	GoalActive      GoalStatus = "active"
	GoalMaintenance GoalStatus = "maintenance"
	GoalArchived    GoalStatus = "archived"
)

// String returns the string representation of the status.
func (s GoalStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s GoalStatus) IsValid() bool {
	switch s {
	case GoalActive, GoalMaintenance, GoalArchived:
		return true
	}
	return false
}

// GoalStep is a single step within a goal's task analysis. Only required
// steps count toward mastery.
type GoalStep struct {
	ID          string `json:"id"`
	GoalID      string `json:"goal_id"`
	Position    int    `json:"position"`
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"is_required"`
}

// Goal is a development goal assigned to an employee. Its automatic fields
// (streak, mastery, status) are mutated only by the mastery evaluator inside
// the commit transaction; archiving is an explicit, terminal external call.
type Goal struct {
	ID                    string     `json:"id"`
	EmployeeID            string     `json:"employee_id"`
	Title                 string     `json:"title"`
	Status                GoalStatus `json:"status"`
	ConsecutiveAllCorrect int        `json:"consecutive_all_correct"`
	MasteryAchieved       bool       `json:"mastery_achieved"`
	MasteryDate           string     `json:"mastery_date,omitempty"` // YYYY-MM-DD
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`

	// Evaluation bookkeeping. LastEvaluatedDate is the most recent date the
	// evaluator ran for; PriorStreak is the streak carried into that date.
	// Together they let a same-day resubmission recompute the day from the
	// authoritative record set instead of double-counting it.
	LastEvaluatedDate string `json:"last_evaluated_date,omitempty"` // YYYY-MM-DD
	PriorStreak       int    `json:"prior_streak"`

	// Relational data -- populated by queries, not stored in the goals table.
	Steps []*GoalStep `json:"steps,omitempty"`
}

// RequiredSteps returns the subset of steps that count toward mastery.
func (g *Goal) RequiredSteps() []*GoalStep {
	var req []*GoalStep
	for _, s := range g.Steps {
		if s.IsRequired {
			req = append(req, s)
		}
	}
	return req
}
