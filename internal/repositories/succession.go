package repositories

import "team-chat-service/internal/models"

// pickSuccessor chooses which remaining membership inherits the owner role
// when the current owner leaves. Admins take precedence over plain members;
// within a role the earliest joined_at wins, with the lower id breaking exact
// timestamp ties. remaining must be non-empty and contain no owner.
func pickSuccessor(remaining []models.ChannelMembership) models.ChannelMembership {
	best := remaining[0]
	for _, m := range remaining[1:] {
		if precedes(m, best) {
			best = m
		}
	}
	return best
}

func precedes(a, b models.ChannelMembership) bool {
	aAdmin := a.Role == models.RoleAdmin
	bAdmin := b.Role == models.RoleAdmin
	if aAdmin != bAdmin {
		return aAdmin
	}
	if !a.JoinedAt.Equal(b.JoinedAt) {
		return a.JoinedAt.Before(b.JoinedAt)
	}
	return a.ID < b.ID
}
