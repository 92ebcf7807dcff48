package grading

import (
	"sort"

	"github.com/elimu-sms/elimu-api/internal/models"
)

// PassMark is the percentage below which a score does not count as a pass.
const PassMark = 50.0

// Classification holds the curriculum-specific representation derived from a
// percentage. Exactly one field is set for a known curriculum.
type Classification struct {
	Grade           *string
	CompetencyLevel *models.CompetencyLevel
}

// Percentage converts raw marks against a maximum into 0-100 scale.
// A non-positive maximum yields zero.
func Percentage(marks, maxMarks float64) float64 {
	if maxMarks <= 0 {
		return 0
	}
	return marks / maxMarks * 100
}

// LetterGrade maps a percentage to the 8-4-4 letter scale.
func LetterGrade(percentage float64) string {
	switch {
	case percentage >= 80:
		return "A"
	case percentage >= 70:
		return "B"
	case percentage >= 60:
		return "C"
	case percentage >= 50:
		return "D"
	default:
		return "E"
	}
}

// CompetencyBand maps a percentage to the CBC expectation band.
func CompetencyBand(percentage float64) models.CompetencyLevel {
	switch {
	case percentage >= 80:
		return models.CompetencyExceeding
	case percentage >= 60:
		return models.CompetencyMeeting
	case percentage >= 40:
		return models.CompetencyApproaching
	default:
		return models.CompetencyBelow
	}
}

// Classify derives the curriculum-appropriate representation for a
// percentage. Unknown curricula classify to nothing.
func Classify(percentage float64, curriculum models.Curriculum) Classification {
	switch curriculum {
	case models.CurriculumCBC:
		level := CompetencyBand(percentage)
		return Classification{CompetencyLevel: &level}
	case models.Curriculum844:
		grade := LetterGrade(percentage)
		return Classification{Grade: &grade}
	default:
		return Classification{}
	}
}

// StudentTotal pairs a student with an aggregate total for ranking.
type StudentTotal struct {
	StudentID string
	Total     float64
}

// Rank returns the 1-based position of the target student: one plus the
// number of students with a strictly greater total. Equal totals share a
// rank and the following rank is skipped. Returns 0 when the target is not
// in the list.
func Rank(totals []StudentTotal, targetID string) int {
	var target *StudentTotal
	for i := range totals {
		if totals[i].StudentID == targetID {
			target = &totals[i]
			break
		}
	}
	if target == nil {
		return 0
	}
	rank := 1
	for i := range totals {
		if totals[i].StudentID != targetID && totals[i].Total > target.Total {
			rank++
		}
	}
	return rank
}

// SortByTotalDesc orders totals from best to worst, breaking ties by student
// ID so repeated runs over the same data produce the same order.
func SortByTotalDesc(totals []StudentTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Total != totals[j].Total {
			return totals[i].Total > totals[j].Total
		}
		return totals[i].StudentID < totals[j].StudentID
	})
}
