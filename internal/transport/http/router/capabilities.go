package router

import (
	"github.com/baechuer/church-service/internal/domain"
	"github.com/baechuer/church-service/internal/transport/http/middleware"
)

const (
	CapPrayerRead    middleware.Capability = "prayer:read"
	CapPrayerWrite   middleware.Capability = "prayer:write"
	CapEventsWrite   middleware.Capability = "events:write"
	CapContactRead   middleware.Capability = "contact:read"
	CapContactWrite  middleware.Capability = "contact:write"
	CapSermonsWrite  middleware.Capability = "sermons:write"
	CapUsersWrite    middleware.Capability = "users:write"
	CapDashboardRead middleware.Capability = "dashboard:read"
	CapSelf          middleware.Capability = "self"
)

var leadership = []domain.Role{domain.RoleAdmin, domain.RolePastor}

// Capabilities is the only place roles are mapped to operations.
// staff and volunteer hold nothing beyond self.
var Capabilities = map[middleware.Capability][]domain.Role{
	CapPrayerRead:    leadership,
	CapPrayerWrite:   leadership,
	CapEventsWrite:   leadership,
	CapContactRead:   leadership,
	CapContactWrite:  leadership,
	CapSermonsWrite:  leadership,
	CapUsersWrite:    leadership,
	CapDashboardRead: leadership,
	CapSelf:          domain.AllRoles(),
}
