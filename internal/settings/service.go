package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/admingrid/internal/store"
)

// Errors returned by the service.
var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrInvalidValue   = errors.New("invalid value")
)

// Repository is the key/value storage the service runs on.
type Repository interface {
	ListSettings(ctx context.Context) ([]store.Setting, error)
	GetSetting(ctx context.Context, key string) (store.Setting, error)
	PutSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// Value is a definition together with its effective value.
type Value struct {
	Definition
	Value     string
	IsDefault bool
	UpdatedAt time.Time
}

// Service reads and writes settings through their definitions.
type Service struct {
	repo   Repository
	defs   []Definition
	index  map[string]Definition
	logger *slog.Logger
}

// NewService creates a service over repo. With no defs the built-in
// Definitions are used. If logger is nil, a discard logger is used.
func NewService(repo Repository, logger *slog.Logger, defs ...Definition) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(defs) == 0 {
		defs = Definitions
	}
	index, err := validateDefinitions(defs)
	if err != nil {
		return nil, err
	}
	return &Service{repo: repo, defs: defs, index: index, logger: logger}, nil
}

// Definitions returns the definitions the service was built with.
func (s *Service) Definitions() []Definition { return slices.Clone(s.defs) }

func (s *Service) lookup(key string) (Definition, error) {
	d, ok := s.index[key]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return d, nil
}

// EnsureDefaults stores the default of every definition that has no stored
// value yet. Stored values are left untouched. It returns the number of keys
// written.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	stored, err := s.repo.ListSettings(ctx)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(stored))
	for _, st := range stored {
		have[st.Key] = true
	}

	added := 0
	for _, d := range s.defs {
		if have[d.Key] {
			continue
		}
		value, _ := normalize(d, d.Default)
		if err := s.repo.PutSetting(ctx, d.Key, value); err != nil {
			return added, err
		}
		added++
	}
	if added > 0 {
		s.logger.Info("stored default settings", "count", added)
	}
	return added, nil
}

// All returns every defined setting with its effective value, in definition order.
func (s *Service) All(ctx context.Context) ([]Value, error) {
	stored, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]store.Setting, len(stored))
	for _, st := range stored {
		byKey[st.Key] = st
	}

	out := make([]Value, 0, len(s.defs))
	for _, d := range s.defs {
		v := Value{Definition: d, Value: d.Default, IsDefault: true}
		if st, ok := byKey[d.Key]; ok {
			v.Value = st.Value
			v.IsDefault = st.Value == d.Default
			v.UpdatedAt = st.UpdatedAt
		}
		out = append(out, v)
	}
	return out, nil
}

// Get returns the effective value of a setting: the stored value, or the
// default when nothing is stored.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	d, err := s.lookup(key)
	if err != nil {
		return "", err
	}
	st, err := s.repo.GetSetting(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return d.Default, nil
	}
	if err != nil {
		return "", err
	}
	return st.Value, nil
}

// Set validates and stores a value. The stored form is normalized, e.g.
// "yes" becomes "true" and "7.5" money becomes "7.50".
func (s *Service) Set(ctx context.Context, key, value string) error {
	d, err := s.lookup(key)
	if err != nil {
		return err
	}
	norm, err := normalize(d, value)
	if err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidValue, key, err)
	}
	if err := s.repo.PutSetting(ctx, key, norm); err != nil {
		return err
	}
	s.logger.Debug("setting changed", "key", key, "value", norm)
	return nil
}

// Reset removes the stored value so the default applies again.
func (s *Service) Reset(ctx context.Context, key string) error {
	if _, err := s.lookup(key); err != nil {
		return err
	}
	return s.repo.DeleteSetting(ctx, key)
}

// Int returns an int setting.
func (s *Service) Int(ctx context.Context, key string) (int, error) {
	v, err := s.typed(ctx, key, KindInt)
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Bool returns a bool setting.
func (s *Service) Bool(ctx context.Context, key string) (bool, error) {
	v, err := s.typed(ctx, key, KindBool)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Duration returns a duration setting.
func (s *Service) Duration(ctx context.Context, key string) (time.Duration, error) {
	v, err := s.typed(ctx, key, KindDuration)
	if err != nil {
		return 0, err
	}
	return v.(time.Duration), nil
}

// MoneyCents returns a money setting in cents.
func (s *Service) MoneyCents(ctx context.Context, key string) (int64, error) {
	v, err := s.typed(ctx, key, KindMoney)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (s *Service) typed(ctx context.Context, key string, kind Kind) (any, error) {
	d, err := s.lookup(key)
	if err != nil {
		return nil, err
	}
	if d.Kind != kind {
		return nil, fmt.Errorf("setting %s is a %s, not a %s", key, d.Kind, kind)
	}
	raw, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	v, err := parse(d, raw)
	if err != nil {
		// A value edited behind the service's back falls back to the default.
		s.logger.Warn("stored setting is invalid, using default", "key", key, "error", err)
		return parse(d, d.Default)
	}
	return v, nil
}

// Decode fills out, a pointer to a struct, from the settings of one group.
// Fields are matched by the key without the group prefix through
// `mapstructure` tags.
func (s *Service) Decode(ctx context.Context, group string, out any) error {
	values, err := s.All(ctx)
	if err != nil {
		return err
	}
	input := map[string]any{}
	for _, v := range values {
		if v.Group != group {
			continue
		}
		typed, err := parse(v.Definition, v.Value)
		if err != nil {
			typed, _ = parse(v.Definition, v.Default)
		}
		input[v.Name()] = typed
	}
	if len(input) == 0 {
		return fmt.Errorf("%w: group %s", ErrUnknownSetting, group)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("failed to decode %s settings: %w", group, err)
	}
	return nil
}

// normalize validates raw against the definition and returns its canonical form.
func normalize(d Definition, raw string) (string, error) {
	v, err := parse(d, raw)
	if err != nil {
		return "", err
	}
	if d.Kind == KindJSON {
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(strings.TrimSpace(raw))); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return fmt.Sprintf("%d.%02d", x/100, x%100), nil
	case time.Duration:
		return x.String(), nil
	default:
		return v.(string), nil
	}
}

// parse converts raw to the Go type of the definition's kind. Money is
// returned in cents; JSON as the decoded document.
func parse(d Definition, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch d.Kind {
	case KindInt:
		return strconv.Atoi(raw)
	case KindBool:
		switch strings.ToLower(raw) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return nil, fmt.Errorf("not a boolean: %q", raw)
	case KindMoney:
		f, err := strconv.ParseFloat(strings.TrimPrefix(raw, "$"), 64)
		if err != nil {
			return nil, fmt.Errorf("not an amount: %q", raw)
		}
		if f < 0 {
			return nil, fmt.Errorf("amount must not be negative: %q", raw)
		}
		return int64(math.Round(f * 100)), nil
	case KindDuration:
		return time.ParseDuration(raw)
	case KindJSON:
		if !json.Valid([]byte(raw)) {
			return nil, fmt.Errorf("not valid JSON: %q", raw)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		if len(d.Options) > 0 && !slices.Contains(d.Options, raw) {
			return nil, fmt.Errorf("%q is not one of %s", raw, strings.Join(d.Options, ", "))
		}
		return raw, nil
	}
}
