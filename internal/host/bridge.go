// Package host models the embedding chat client as an optional capability.
package host

import "errors"

// ErrUnavailable is returned when the host integration is absent.
var ErrUnavailable = errors.New("host integration unavailable")

// HapticStyle names a haptic feedback pattern understood by the host.
type HapticStyle string

const (
	HapticLight     HapticStyle = "light"
	HapticMedium    HapticStyle = "medium"
	HapticHeavy     HapticStyle = "heavy"
	HapticSuccess   HapticStyle = "success"
	HapticWarning   HapticStyle = "warning"
	HapticError     HapticStyle = "error"
	HapticSelection HapticStyle = "selection"
)

// HapticFunc triggers haptic feedback on the host device.
type HapticFunc func(HapticStyle)

// User holds the identity fields the host reports for the current user.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
	IsPremium    bool
	PhotoURL     string
}

// Bridge is the capability the core uses to talk to the host. Lookups
// return ErrUnavailable instead of failing hard.
type Bridge interface {
	IsAvailable() bool
	User() (User, error)
	// InitData returns the opaque session token issued by the host.
	InitData() (string, error)
	// Haptic is a no-op when the host is unavailable.
	Haptic(style HapticStyle)
}

type available struct {
	user     User
	initData string
	haptic   HapticFunc
}

// Available returns a bridge backed by a present host.
func Available(user User, initData string, haptic HapticFunc) Bridge {
	return &available{user: user, initData: initData, haptic: haptic}
}

func (a *available) IsAvailable() bool { return true }

func (a *available) User() (User, error) {
	if a.user.ID == 0 {
		return User{}, ErrUnavailable
	}
	return a.user, nil
}

func (a *available) InitData() (string, error) {
	return a.initData, nil
}

func (a *available) Haptic(style HapticStyle) {
	if a.haptic != nil {
		a.haptic(style)
	}
}

type unavailable struct{}

// Unavailable returns a bridge for running outside the host.
func Unavailable() Bridge { return unavailable{} }

func (unavailable) IsAvailable() bool         { return false }
func (unavailable) User() (User, error)       { return User{}, ErrUnavailable }
func (unavailable) InitData() (string, error) { return "", ErrUnavailable }
func (unavailable) Haptic(HapticStyle)        {}
