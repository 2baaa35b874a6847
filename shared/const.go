package shared

const (
	UserID   = "user_id"
	UserRole = "user_role"

	RoleStudent = "student"
	RoleAdmin   = "admin"

	MaterialKindNote      = "note"
	MaterialKindPastPaper = "past_paper"
)
