package api

// CanManageCourse reports whether user may upload, edit or delete videos of
// course. It is the only place role gating is derived; views must not compare
// roles themselves.
//
// The grant is role based: any teacher or admin may manage any course. The API
// enforces ownership on the server side.
func CanManageCourse(user *User, course *Course) bool {
	if user == nil {
		return false
	}
	switch user.Role {
	case RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// CanTeach reports whether user has a teaching view at all.
func CanTeach(user *User) bool {
	return CanManageCourse(user, nil)
}

// Teaches reports whether course belongs to user's teaching list. Admins see
// every course there.
func Teaches(user *User, course Course) bool {
	if !CanTeach(user) {
		return false
	}
	if user.Role == RoleAdmin {
		return true
	}
	return user.ID != "" && course.Instructor.ID == user.ID
}
