package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
	"github.com/alfredjeanlab/tally/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printSessionTable(s *model.Session) {
	fmt.Printf("ID:        %s\n", s.ID)
	fmt.Printf("Holder:    %s\n", s.HolderID)
	fmt.Printf("Status:    %s\n", ui.RenderStatus(string(s.Status)))
	fmt.Printf("Subjects:  %s\n", strings.Join(s.EmployeeIDs, ", "))
	if s.Location != "" {
		fmt.Printf("Location:  %s\n", s.Location)
	}
	fmt.Printf("Lease:     %s\n", formatExpiry(s.LeaseExpiresAt))
	fmt.Printf("Created:   %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
	if s.CompletedAt != nil {
		fmt.Printf("Completed: %s\n", s.CompletedAt.Format("2006-01-02 15:04:05"))
	}
}

func printSessionListTable(sessions []*model.Session) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tHOLDER\tSUBJECTS\tLEASE\tLOCATION")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			ui.RenderStatus(string(s.Status)),
			s.HolderID,
			truncate(strings.Join(s.EmployeeIDs, ","), 40),
			formatExpiry(s.LeaseExpiresAt),
			truncate(s.Location, 20),
		)
	}
	w.Flush()
	fmt.Printf("\n%d sessions\n", len(sessions))
}

func printGoalTable(g *model.Goal) {
	fmt.Printf("ID:       %s\n", g.ID)
	fmt.Printf("Employee: %s\n", g.EmployeeID)
	fmt.Printf("Title:    %s\n", g.Title)
	fmt.Printf("Status:   %s\n", ui.RenderStatus(string(g.Status)))
	fmt.Printf("Streak:   %d/%d consecutive all-correct days\n", g.ConsecutiveAllCorrect, model.MasteryThreshold)
	if g.MasteryAchieved {
		fmt.Printf("Mastered: %s\n", g.MasteryDate)
	}
	if len(g.Steps) > 0 {
		fmt.Println("Steps:")
		for _, step := range g.Steps {
			marker := "optional"
			if step.IsRequired {
				marker = "required"
			}
			fmt.Printf("  %d. [%s] %s  (%s)\n", step.Position, marker, step.Description, ui.RenderMuted(step.ID))
		}
	}
	fmt.Printf("Created:  %s\n", g.CreatedAt.Format("2006-01-02 15:04:05"))
}

func printGoalListTable(goals []*model.Goal) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSTREAK\tMASTERED\tTITLE")
	for _, g := range goals {
		mastered := "-"
		if g.MasteryAchieved {
			mastered = g.MasteryDate
		}
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\n",
			g.ID,
			ui.RenderStatus(string(g.Status)),
			g.ConsecutiveAllCorrect, model.MasteryThreshold,
			mastered,
			truncate(g.Title, 50),
		)
	}
	w.Flush()
	fmt.Printf("\n%d goals\n", len(goals))
}

func printDraftListTable(drafts []*model.DraftRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMPLOYEE\tSTEP\tDATE\tOUTCOME\tNOTES")
	for _, d := range drafts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.EmployeeID,
			d.GoalStepID,
			d.RecordDate,
			ui.RenderOutcome(string(d.Outcome)),
			truncate(d.Notes, 40),
		)
	}
	w.Flush()
	fmt.Printf("\n%d drafts\n", len(drafts))
}

func printRecordListTable(records []*model.ProgressRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTEP\tDATE\tOUTCOME\tDOCUMENTER\tNOTES")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.GoalStepID,
			r.RecordDate,
			ui.RenderOutcome(string(r.Outcome)),
			r.DocumenterID,
			truncate(r.Notes, 40),
		)
	}
	w.Flush()
	fmt.Printf("\n%d records\n", len(records))
}

// formatExpiry renders a lease expiry as remaining time, or EXPIRED.
func formatExpiry(expiresAt time.Time) string {
	now := time.Now().UTC()
	if !expiresAt.After(now) {
		return "EXPIRED"
	}
	return fmt.Sprintf("%s (expires %s)",
		expiresAt.Sub(now).Truncate(time.Second),
		expiresAt.Format("15:04:05"))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
