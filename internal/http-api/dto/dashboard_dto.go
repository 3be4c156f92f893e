package dto

// ReadingStats aggregates the caller's shelf counts and goal progress.
type ReadingStats struct {
	TotalBooks       int64    `json:"total_books"`
	BooksThisYear    int64    `json:"books_this_year"`
	CurrentlyReading int64    `json:"currently_reading"`
	WantToRead       int64    `json:"want_to_read"`
	Finished         int64    `json:"finished"`
	AverageRating    *float64 `json:"average_rating,omitempty"`
	ReadingGoal      int      `json:"reading_goal"`
	GoalProgress     float64  `json:"goal_progress"`
}

// DashboardResponse is the landing-page payload: stats plus the shelves the
// UI renders above the fold.
type DashboardResponse struct {
	Stats            ReadingStats      `json:"stats"`
	CurrentlyReading []ReadingResponse `json:"currently_reading"`
	RecentlyFinished []ReadingResponse `json:"recently_finished"`
}
