package scoring

import (
	"sort"

	"github.com/noah-isme/evalstar-go-api/internal/models"
)

// Ranking is a group's students ordered by total stars.
type Ranking struct {
	Ordered []models.Student
	// Rank is the 1-based position of the requested student, 0 when absent.
	Rank  int
	Total int
}

// Rank orders students by TotalStars descending, ties broken by ascending ID,
// and locates studentID in the result. The input slice is not modified.
func Rank(students []models.Student, studentID uint) Ranking {
	ordered := make([]models.Student, len(students))
	copy(ordered, students)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].TotalStars != ordered[j].TotalStars {
			return ordered[i].TotalStars > ordered[j].TotalStars
		}
		return ordered[i].ID < ordered[j].ID
	})

	ranking := Ranking{Ordered: ordered, Total: len(ordered)}
	for idx, student := range ordered {
		if student.ID == studentID {
			ranking.Rank = idx + 1
			break
		}
	}
	return ranking
}
