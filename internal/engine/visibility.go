package engine

import "github.com/lalith-99/shoutout/internal/models"

// IsVisible decides whether viewer may see s in any normal read path (feed,
// reactions, comments). The first matching rule wins:
//
//  1. deleted shout-outs are hidden from everyone
//  2. public is visible to everyone
//  3. private is visible to the giver and the receiver
//  4. department_only is visible to viewers in the giver's department,
//     regardless of role
//
// Anything else is hidden.
func IsVisible(s *models.ShoutOut, viewer *models.User) bool {
	if s == nil || s.IsDeleted {
		return false
	}
	switch s.Visibility {
	case models.VisibilityPublic:
		return true
	case models.VisibilityPrivate:
		return viewer != nil && (viewer.ID == s.GiverID || s.IsReceiver(viewer.ID))
	case models.VisibilityDepartmentOnly:
		return viewer != nil && viewer.Department == s.GiverDepartment
	}
	return false
}

// CanReview is the moderation read path. Admins may open any shout-out,
// deleted ones included; for everyone else it is IsVisible.
func CanReview(s *models.ShoutOut, viewer *models.User) bool {
	if s == nil {
		return false
	}
	if viewer.IsAdmin() {
		return true
	}
	return IsVisible(s, viewer)
}
