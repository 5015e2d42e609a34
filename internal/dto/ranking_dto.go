package dto

// RankingEntry is one student's row in a group ranking.
type RankingEntry struct {
	Rank       int    `json:"rank"`
	StudentID  uint   `json:"student_id"`
	Name       string `json:"name"`
	TotalStars int    `json:"total_stars"`
	IsCurrent  bool   `json:"is_current"`
}

// RankingGroup identifies the ranked group.
type RankingGroup struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

// RankingResponse is the class ranking seen by a student.
type RankingResponse struct {
	Group         RankingGroup   `json:"group"`
	Rank          int            `json:"rank"`
	TotalStudents int            `json:"total_students"`
	TotalStars    int            `json:"total_stars"`
	Students      []RankingEntry `json:"students"`
	CacheHit      bool           `json:"cache_hit"`
}
