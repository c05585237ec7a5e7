package app

// Event names emitted on the bus.
const (
	EventReady            = "app:ready"
	EventShutdown         = "app:shutdown"
	EventNavigation       = "navigation:change"
	EventMenuToggle       = "menu:toggle"
	EventThemeChange      = "theme:change"
	EventPreferenceChange = "preferences:change"
	EventSystemChange     = "system:change"
	EventConfigReloaded   = "config:reloaded"
)

// Ready is the payload of EventReady.
type Ready struct {
	Section string
	Theme   string
}

// NavigationChange is the payload of EventNavigation.
type NavigationChange struct {
	From string
	To   string
}

// MenuToggle is the payload of EventMenuToggle.
type MenuToggle struct {
	Open bool
}

// ThemeChange is the payload of EventThemeChange.
type ThemeChange struct {
	Theme     string
	Effective string
}

// PreferenceChange is the payload of EventPreferenceChange.
type PreferenceChange struct {
	Key   string
	Value any
}

// ConfigReloaded is the payload of EventConfigReloaded.
type ConfigReloaded struct {
	Path    string
	Applied int
}
