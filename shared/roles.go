package shared

const (
	ROLE_ADMIN   = "admin"
	ROLE_MEMBER  = "member"
	ROLE_ATHLETE = "athlete"
	ROLE_COACH   = "coach"
)
