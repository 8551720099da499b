package core

import (
	"github.com/archnets/learn-miniapp/internal/api"
	"github.com/archnets/learn-miniapp/internal/host"
)

// Services bundles the domain services sharing one client.
type Services struct {
	Users    *UserService
	Courses  *CourseService
	Progress *ProgressService
	Health   *HealthService
}

func NewServices(client *api.Client, bridge host.Bridge) *Services {
	return &Services{
		Users:    NewUserService(client, bridge),
		Courses:  NewCourseService(client),
		Progress: NewProgressService(client),
		Health:   NewHealthService(client),
	}
}
