package performance

type StatsResponse struct {
	Completed      int64 `json:"completed"`
	Pending        int64 `json:"pending"`
	Overdue        int64 `json:"overdue"`
	Total          int64 `json:"total"`
	CompletionRate int   `json:"completion_rate"`
}

type SnapshotResponse struct {
	UserID         string `json:"user_id"`
	CompletedTasks int    `json:"completed_tasks"`
	PendingTasks   int    `json:"pending_tasks"`
	OverdueTasks   int    `json:"overdue_tasks"`
	WeekNumber     int    `json:"week_number"`
	Year           int    `json:"year"`
	CreatedAt      string `json:"created_at"`
}
