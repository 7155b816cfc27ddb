package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	DefaultFile = "judging_config.json"
	EnvPrefix   = "JUDGING"
	clockLayout = "15:04"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	TeamIDs    string `mapstructure:"team_ids" validate:"required"`
	JudgeNames string `mapstructure:"judge_names" validate:"required"`
	RoomNames  string `mapstructure:"room_names" validate:"required"`
	RepNames   string `mapstructure:"rep_names" validate:"required"`

	Scheduling        SchedulingConfig `mapstructure:"scheduling"`
	PresentationCount uint64           `mapstructure:"presentation_count" validate:"gte=1"`

	SpecialTrack SpecialTrackConfig `mapstructure:"special_track"`
	TeamFlags    []string           `mapstructure:"team_flags"`

	Solver SolverConfig `mapstructure:"solver"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
}

// SchedulingConfig describes the slot grid. Times are wall-clock "HH:MM", lengths are minutes.
type SchedulingConfig struct {
	SlotCount   uint64 `mapstructure:"slot_count" validate:"gte=1"`
	SlotLength  uint64 `mapstructure:"slot_length" validate:"gte=1"`
	StartTime   string `mapstructure:"start_time" validate:"required,datetime=15:04"`
	WindowStart string `mapstructure:"prhi_window_start" validate:"omitempty,datetime=15:04"`
	WindowEnd   string `mapstructure:"prhi_window_end" validate:"omitempty,datetime=15:04"`
}

type SpecialTrackConfig struct {
	Org       string `mapstructure:"org" validate:"required"`
	Marker    string `mapstructure:"marker" validate:"required"`
	JudgeName string `mapstructure:"judge_name" validate:"required"`
}

type SolverConfig struct {
	Name    string            `mapstructure:"name" validate:"oneof=gini kissat cadical cryptominisat minisat glucose"`
	Timeout time.Duration     `mapstructure:"timeout" validate:"gte=0"`
	Paths   map[string]string `mapstructure:"paths"`
}

type OutputConfig struct {
	Dir         string `mapstructure:"dir" validate:"required"`
	PDF         bool   `mapstructure:"pdf"`
	MetricsFile string `mapstructure:"metrics_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// Load reads the JSON configuration at path. Every key can be overridden from the environment with the
// JUDGING_ prefix (dots become underscores), and a .env file in the working directory is honored.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: cannot read %v: %v", ErrInvalidConfig, path, err)
	}

	cfg := &Config{}
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hooks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg.Solver.Name = strings.ToLower(cfg.Solver.Name)
	cfg.TeamFlags = normalizeFlags(cfg.TeamFlags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	windowSet := cfg.Scheduling.WindowStart != "" || cfg.Scheduling.WindowEnd != ""
	if windowSet {
		if cfg.Scheduling.WindowStart == "" || cfg.Scheduling.WindowEnd == "" {
			return fmt.Errorf("%w: prhi_window_start and prhi_window_end must be set together", ErrInvalidConfig)
		}
		start, end, _ := cfg.SpecialWindow()
		if end.Before(start) {
			return fmt.Errorf("%w: special window ends (%v) before it starts (%v)", ErrInvalidConfig,
				cfg.Scheduling.WindowEnd, cfg.Scheduling.WindowStart)
		}
	}
	return nil
}

func (cfg *Config) StartTime() time.Time {
	start, _ := time.Parse(clockLayout, cfg.Scheduling.StartTime)
	return start
}

// SlotTime is the wall-clock start of slot: start_time + slot*slot_length
func (cfg *Config) SlotTime(slot uint64) time.Time {
	return cfg.StartTime().Add(time.Duration(slot*cfg.Scheduling.SlotLength) * time.Minute)
}

func (cfg *Config) SlotLabel(slot uint64) string {
	return cfg.SlotTime(slot).Format(clockLayout)
}

// SpecialWindow returns the special-track availability window; ok is false when none is configured
func (cfg *Config) SpecialWindow() (start, end time.Time, ok bool) {
	if cfg.Scheduling.WindowStart == "" || cfg.Scheduling.WindowEnd == "" {
		return time.Time{}, time.Time{}, false
	}
	start, _ = time.Parse(clockLayout, cfg.Scheduling.WindowStart)
	end, _ = time.Parse(clockLayout, cfg.Scheduling.WindowEnd)
	return start, end, true
}

// SpecialSlots lists the slots whose start lies inside the special window, both ends included
func (cfg *Config) SpecialSlots() []uint64 {
	start, end, ok := cfg.SpecialWindow()
	if !ok {
		return []uint64{}
	}

	slots := make([]uint64, 0)
	for slot := range cfg.Scheduling.SlotCount {
		slotTime := cfg.SlotTime(slot)
		if !slotTime.Before(start) && !slotTime.After(end) {
			slots = append(slots, slot)
		}
	}
	return slots
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("special_track.org", "PRHI")
	v.SetDefault("special_track.marker", "prhi")
	v.SetDefault("special_track.judge_name", "PRHI Judge")
	v.SetDefault("team_flags", []string{"prhi", "first"})

	v.SetDefault("solver.name", "gini")
	v.SetDefault("solver.timeout", "0s")
	v.SetDefault("solver.paths", map[string]string{})

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.pdf", false)
	v.SetDefault("output.metrics_file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func normalizeFlags(flags []string) []string {
	result := make([]string, 0, len(flags))
	for _, flag := range flags {
		trimmed := strings.ToLower(strings.TrimSpace(flag))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
