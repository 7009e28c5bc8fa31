// Package mastery implements the deterministic goal-promotion rules. The
// evaluator is a pure function of a goal's required steps, the authoritative
// submitted outcomes for one date, and the prior streak; callers run it inside
// the commit transaction and persist the result.
package mastery

import (
	"github.com/alfredjeanlab/tally/internal/model"
)

// Result is the recomputed state for a goal after evaluating one date.
type Result struct {
	ConsecutiveAllCorrect int
	PriorStreak           int
	LastEvaluatedDate     string
	MasteryAchieved       bool
	MasteryDate           string
	Status                model.GoalStatus

	// NewlyMastered is set when this evaluation crossed the threshold,
	// so callers can emit a one-time event.
	NewlyMastered bool
}

// Evaluate recomputes a goal's streak and mastery state from the submitted
// outcomes for a single date. outcomes maps goal step ID to the authoritative
// outcome for that date; required steps missing from the map count as not
// correct.
//
// The streak baseline is the streak carried into date: when the goal was
// already evaluated for the same date, the stored PriorStreak is reused so a
// resubmission recomputes the day rather than counting it twice. Evaluating
// the same date with unchanged evidence is therefore a no-op.
//
// A goal with zero required steps is never satisfiable: its streak resets to
// zero. Archived goals must be filtered out by the caller before evaluation.
func Evaluate(goal *model.Goal, date string, outcomes map[string]model.Outcome) Result {
	prior := goal.ConsecutiveAllCorrect
	if goal.LastEvaluatedDate == date {
		prior = goal.PriorStreak
	}

	res := Result{
		PriorStreak:       prior,
		LastEvaluatedDate: date,
		MasteryAchieved:   goal.MasteryAchieved,
		MasteryDate:       goal.MasteryDate,
		Status:            goal.Status,
	}

	required := goal.RequiredSteps()

	correctToday := 0
	for _, step := range required {
		if outcomes[step.ID] == model.OutcomeCorrect {
			correctToday++
		}
	}
	allCorrectToday := len(required) > 0 && correctToday == len(required)

	if allCorrectToday {
		res.ConsecutiveAllCorrect = prior + 1
	} else {
		res.ConsecutiveAllCorrect = 0
	}

	// Mastery never reverts once achieved; there is no automatic demotion.
	if res.ConsecutiveAllCorrect >= model.MasteryThreshold && !goal.MasteryAchieved {
		res.MasteryAchieved = true
		res.MasteryDate = date
		res.Status = model.GoalMaintenance
		res.NewlyMastered = true
	}

	return res
}
