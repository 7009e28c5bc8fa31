package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/tally/internal/model"
)

// goalColumns is the column list used for SELECT statements on the goals table.
const goalColumns = `id, employee_id, title, status, consecutive_all_correct,
	mastery_achieved, mastery_date, last_evaluated_date, prior_streak,
	created_at, updated_at`

func queryCreateGoal(ctx context.Context, db executor, g *model.Goal) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO goals (
			id, employee_id, title, status, consecutive_all_correct,
			mastery_achieved, mastery_date, last_evaluated_date, prior_streak,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		g.ID,
		g.EmployeeID,
		g.Title,
		string(g.Status),
		g.ConsecutiveAllCorrect,
		g.MasteryAchieved,
		nullString(g.MasteryDate),
		nullString(g.LastEvaluatedDate),
		g.PriorStreak,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, step := range g.Steps {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO goal_steps (id, goal_id, position, description, is_required)
			VALUES ($1, $2, $3, $4, $5)`,
			step.ID, g.ID, step.Position, nullString(step.Description), step.IsRequired,
		); err != nil {
			return fmt.Errorf("insert goal step %s: %w", step.ID, err)
		}
	}
	return nil
}

func queryGetGoal(ctx context.Context, db executor, id string, forUpdate bool) (*model.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	g, err := scanGoal(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	steps, err := queryGetGoalSteps(ctx, db, id)
	if err != nil {
		return nil, err
	}
	g.Steps = steps

	return g, nil
}

func queryGetGoalSteps(ctx context.Context, db executor, goalID string) ([]*model.GoalStep, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, goal_id, position, description, is_required
		FROM goal_steps
		WHERE goal_id = $1
		ORDER BY position, id`,
		goalID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGoalSteps(rows)
}

func queryListGoals(ctx context.Context, db executor, employeeID string) ([]*model.Goal, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE employee_id = $1
		ORDER BY created_at`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, g := range goals {
		steps, err := queryGetGoalSteps(ctx, db, g.ID)
		if err != nil {
			return nil, err
		}
		g.Steps = steps
	}

	return goals, nil
}

func queryAllGoals(ctx context.Context, db executor) ([]*model.Goal, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, g := range goals {
		steps, err := queryGetGoalSteps(ctx, db, g.ID)
		if err != nil {
			return nil, err
		}
		g.Steps = steps
	}

	return goals, nil
}

func queryGoalIDsForSteps(ctx context.Context, db executor, stepIDs []string) ([]string, error) {
	if len(stepIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(stepIDs))
	args := make([]any, len(stepIDs))
	for i, id := range stepIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT goal_id FROM goal_steps
		WHERE id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY goal_id`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func queryApplyGoalEvaluation(ctx context.Context, db executor, g *model.Goal) error {
	return db.QueryRowContext(ctx, `
		UPDATE goals SET
			consecutive_all_correct = $2,
			mastery_achieved = $3,
			mastery_date = $4,
			last_evaluated_date = $5,
			prior_streak = $6,
			status = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		g.ID,
		g.ConsecutiveAllCorrect,
		g.MasteryAchieved,
		nullString(g.MasteryDate),
		nullString(g.LastEvaluatedDate),
		g.PriorStreak,
		string(g.Status),
	).Scan(&g.UpdatedAt)
}

func queryArchiveGoal(ctx context.Context, db executor, id string) (*model.Goal, error) {
	row := db.QueryRowContext(ctx, `
		UPDATE goals
		SET status = 'archived', updated_at = NOW()
		WHERE id = $1
		RETURNING `+goalColumns,
		id,
	)
	g, err := scanGoal(row)
	if err != nil {
		return nil, err
	}

	steps, err := queryGetGoalSteps(ctx, db, id)
	if err != nil {
		return nil, err
	}
	g.Steps = steps

	return g, nil
}
