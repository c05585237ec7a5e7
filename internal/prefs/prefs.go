// Package prefs persists the visitor's theme and accessibility preferences.
//
// The theme is stored as a plain string under ThemeKey. Preferences are a JSON
// object under PreferencesKey; unknown keys written by other clients are kept
// when a single field is patched.
package prefs

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/portfolio/internal/logging"
	"github.com/dshills/portfolio/internal/storage"
)

// Storage keys.
const (
	ThemeKey       = "portfolio-theme"
	PreferencesKey = "portfolio-preferences"
)

// Theme values.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Font sizes.
const (
	FontSmall  = "small"
	FontMedium = "medium"
	FontLarge  = "large"
)

var (
	// ErrInvalidTheme is returned for a theme outside light, dark and system.
	ErrInvalidTheme = errors.New("invalid theme")

	// ErrUnknownField is returned by SetField for an unrecognized field.
	ErrUnknownField = errors.New("unknown preference field")

	// ErrInvalidValue is returned when a field value has the wrong type.
	ErrInvalidValue = errors.New("invalid preference value")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Preferences are the visitor's accessibility settings.
type Preferences struct {
	ReducedMotion bool   `json:"reducedMotion"`
	HighContrast  bool   `json:"highContrast"`
	FontSize      string `json:"fontSize"`
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Preferences {
	return Preferences{FontSize: FontMedium}
}

// Map returns the preferences as a state subtree.
func (p Preferences) Map() map[string]any {
	return map[string]any{
		"reducedMotion": p.ReducedMotion,
		"highContrast":  p.HighContrast,
		"fontSize":      p.FontSize,
	}
}

// FromMap reads preferences from a state subtree. Missing or mistyped
// entries keep their default.
func FromMap(m map[string]any) Preferences {
	p := Defaults()
	if v, ok := m["reducedMotion"].(bool); ok {
		p.ReducedMotion = v
	}
	if v, ok := m["highContrast"].(bool); ok {
		p.HighContrast = v
	}
	if v, ok := m["fontSize"].(string); ok && ValidFontSize(v) {
		p.FontSize = v
	}
	return p
}

// ValidTheme reports whether theme is a supported theme value.
func ValidTheme(theme string) bool {
	switch theme {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// ValidFontSize reports whether size is a supported font size.
func ValidFontSize(size string) bool {
	switch size {
	case FontSmall, FontMedium, FontLarge:
		return true
	}
	return false
}

// Fields lists the preference field names accepted by SetField.
func Fields() []string {
	return []string{"reducedMotion", "highContrast", "fontSize"}
}

// Store reads and writes preferences through a storage backend.
type Store struct {
	storage      storage.Storage
	logger       logging.Logger
	defaultTheme string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report unreadable stored values.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultTheme sets the theme returned when none is stored.
func WithDefaultTheme(theme string) Option {
	return func(s *Store) {
		if ValidTheme(theme) {
			s.defaultTheme = theme
		}
	}
}

// New creates a preference store over st.
func New(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage:      st,
		logger:       logging.Discard(),
		defaultTheme: ThemeSystem,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadTheme returns the stored theme, or the default theme when nothing valid
// is stored.
func (s *Store) LoadTheme(ctx context.Context) (string, error) {
	v, ok, err := s.storage.GetItem(ctx, ThemeKey)
	if err != nil {
		return s.defaultTheme, fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		return s.defaultTheme, nil
	}
	if !ValidTheme(v) {
		s.logger.Warn("ignoring stored theme", "key", ThemeKey, "value", v)
		return s.defaultTheme, nil
	}
	return v, nil
}

// SaveTheme stores theme.
func (s *Store) SaveTheme(ctx context.Context, theme string) error {
	if !ValidTheme(theme) {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	if err := s.storage.SetItem(ctx, ThemeKey, theme); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Load returns the stored preferences. A missing or unreadable blob yields
// Defaults; an unreadable blob is logged.
func (s *Store) Load(ctx context.Context) (Preferences, error) {
	raw, ok, err := s.storage.GetItem(ctx, PreferencesKey)
	if err != nil {
		return Defaults(), fmt.Errorf("load preferences: %w", err)
	}
	if !ok {
		return Defaults(), nil
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		s.logger.Warn("ignoring unreadable preferences", "key", PreferencesKey)
		return Defaults(), nil
	}

	p := Defaults()
	if err := json.UnmarshalFromString(raw, &p); err != nil {
		s.logger.Warn("ignoring unreadable preferences", "key", PreferencesKey, "error", err)
		return Defaults(), nil
	}
	if !ValidFontSize(p.FontSize) {
		p.FontSize = FontMedium
	}
	return p, nil
}

// Save replaces the stored preferences with p.
func (s *Store) Save(ctx context.Context, p Preferences) error {
	raw, err := json.MarshalToString(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.storage.SetItem(ctx, PreferencesKey, raw); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// SetField patches one field of the stored preferences, keeping every other
// key of the stored object.
func (s *Store) SetField(ctx context.Context, field string, value any) error {
	if err := CheckField(field, value); err != nil {
		return err
	}
	return s.patch(ctx, map[string]any{field: value})
}

// Merge writes every field of p into the stored preferences. Keys of the
// stored object that Preferences does not know are kept.
func (s *Store) Merge(ctx context.Context, p Preferences) error {
	return s.patch(ctx, p.Map())
}

// patch applies fields to the stored blob with sjson in Fields order.
func (s *Store) patch(ctx context.Context, fields map[string]any) error {
	raw, ok, err := s.storage.GetItem(ctx, PreferencesKey)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	if !ok || !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		raw, err = json.MarshalToString(Defaults())
		if err != nil {
			return fmt.Errorf("encode preferences: %w", err)
		}
	}

	for _, field := range Fields() {
		value, ok := fields[field]
		if !ok {
			continue
		}
		raw, err = sjson.Set(raw, field, value)
		if err != nil {
			return fmt.Errorf("patch preference %s: %w", field, err)
		}
	}
	if err := s.storage.SetItem(ctx, PreferencesKey, raw); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Field returns one stored preference field as raw JSON-decoded value.
func (s *Store) Field(ctx context.Context, field string) (any, bool, error) {
	raw, ok, err := s.storage.GetItem(ctx, PreferencesKey)
	if err != nil || !ok {
		return nil, false, err
	}
	r := gjson.Get(raw, field)
	if !r.Exists() {
		return nil, false, nil
	}
	return r.Value(), true, nil
}

// CheckField validates value for the preference field.
func CheckField(field string, value any) error {
	switch field {
	case "reducedMotion", "highContrast":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %s must be a bool", ErrInvalidValue, field)
		}
	case "fontSize":
		v, ok := value.(string)
		if !ok || !ValidFontSize(v) {
			return fmt.Errorf("%w: fontSize must be small, medium or large", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}
