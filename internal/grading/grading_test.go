package grading

import (
	"testing"

	"github.com/elimu-sms/elimu-api/internal/models"
)

func TestLetterGrade(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		expected   string
	}{
		{"Perfect Score", 100, "A"},
		{"Grade A Lower Bound", 80, "A"},
		{"Just Below A", 79.99, "B"},
		{"Grade B Lower Bound", 70, "B"},
		{"Grade C", 65, "C"},
		{"Grade C Lower Bound", 60, "C"},
		{"Grade D Lower Bound", 50, "D"},
		{"Grade E", 49.99, "E"},
		{"Zero Score", 0, "E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LetterGrade(tt.percentage); got != tt.expected {
				t.Errorf("LetterGrade(%v) = %s, want %s", tt.percentage, got, tt.expected)
			}
		})
	}
}

func TestCompetencyBand(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		expected   models.CompetencyLevel
	}{
		{"Perfect Score", 100, models.CompetencyExceeding},
		{"Exceeding Lower Bound", 80, models.CompetencyExceeding},
		{"Meeting Upper", 79.9, models.CompetencyMeeting},
		{"Meeting Example", 72, models.CompetencyMeeting},
		{"Meeting Lower Bound", 60, models.CompetencyMeeting},
		{"Approaching", 55, models.CompetencyApproaching},
		{"Approaching Lower Bound", 40, models.CompetencyApproaching},
		{"Below", 39.9, models.CompetencyBelow},
		{"Zero Score", 0, models.CompetencyBelow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompetencyBand(tt.percentage); got != tt.expected {
				t.Errorf("CompetencyBand(%v) = %s, want %s", tt.percentage, got, tt.expected)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Run("CBC sets only the competency band", func(t *testing.T) {
		c := Classify(72, models.CurriculumCBC)
		if c.Grade != nil {
			t.Errorf("expected no grade, got %q", *c.Grade)
		}
		if c.CompetencyLevel == nil || *c.CompetencyLevel != models.CompetencyMeeting {
			t.Errorf("expected MEETING_EXPECTATIONS, got %v", c.CompetencyLevel)
		}
	})

	t.Run("8-4-4 sets only the letter grade", func(t *testing.T) {
		c := Classify(65, models.Curriculum844)
		if c.CompetencyLevel != nil {
			t.Errorf("expected no competency level, got %q", *c.CompetencyLevel)
		}
		if c.Grade == nil || *c.Grade != "C" {
			t.Errorf("expected grade C, got %v", c.Grade)
		}
	})

	t.Run("unknown curriculum classifies to nothing", func(t *testing.T) {
		c := Classify(90, models.Curriculum("IGCSE"))
		if c.Grade != nil || c.CompetencyLevel != nil {
			t.Errorf("expected empty classification, got %+v", c)
		}
	})
}

func TestPercentage(t *testing.T) {
	if got := Percentage(40, 50); got != 80 {
		t.Errorf("Percentage(40, 50) = %v, want 80", got)
	}
	if got := Percentage(10, 0); got != 0 {
		t.Errorf("Percentage with zero max = %v, want 0", got)
	}
}

func TestRank(t *testing.T) {
	totals := []StudentTotal{
		{StudentID: "s1", Total: 250},
		{StudentID: "s2", Total: 300},
		{StudentID: "s3", Total: 300},
		{StudentID: "s4", Total: 180},
	}

	tests := []struct {
		name     string
		target   string
		expected int
	}{
		{"Top Tie First", "s2", 1},
		{"Top Tie Second", "s3", 1},
		{"After Shared Rank Skips", "s1", 3},
		{"Last", "s4", 4},
		{"Missing Student", "s9", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rank(totals, tt.target); got != tt.expected {
				t.Errorf("Rank(%s) = %d, want %d", tt.target, got, tt.expected)
			}
		})
	}
}

func TestSortByTotalDesc(t *testing.T) {
	totals := []StudentTotal{
		{StudentID: "b", Total: 70},
		{StudentID: "a", Total: 70},
		{StudentID: "c", Total: 90},
	}
	SortByTotalDesc(totals)

	want := []string{"c", "a", "b"}
	for i, id := range want {
		if totals[i].StudentID != id {
			t.Fatalf("position %d = %s, want %s", i, totals[i].StudentID, id)
		}
	}
	for i := 1; i < len(totals); i++ {
		if totals[i-1].Total < totals[i].Total {
			t.Fatalf("totals not descending at %d", i)
		}
	}
}
