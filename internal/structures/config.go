package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type BotConfig struct {
	Token   string `yaml:"token" validate:"required"`
	GuildID string `yaml:"guildId" validate:"required"`
}

type ChannelsConfig struct {
	Broadcast  string `yaml:"broadcast" validate:"required"`
	Moderation string `yaml:"moderation"`
}

type PromotionConfig struct {
	RoleID    string        `yaml:"roleId" validate:"required"`
	Threshold int           `yaml:"threshold" validate:"required|min:1"`
	Window    time.Duration `yaml:"window" validate:"required|min:1"`
}

type WatermarkConfig struct {
	URL          string        `yaml:"url" validate:"required|fullUrl"`
	UserAgent    string        `yaml:"userAgent"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	CacheTTL     time.Duration `yaml:"cacheTTL"`
}

type SubmissionConfig struct {
	RejectDuplicateStart bool `yaml:"rejectDuplicateStart"`
	MaxPendingPerUser    int  `yaml:"maxPendingPerUser"`
	NotifyOnSubmit       bool `yaml:"notifyOnSubmit"`
}

type BroadcastConfig struct {
	Glyph      string `yaml:"glyph"`
	ShowHandle bool   `yaml:"showHandle"`
}

type SweepConfig struct {
	Interval     time.Duration `yaml:"interval" validate:"required|min:1"`
	InitialDelay time.Duration `yaml:"initialDelay"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

type StorageConfig struct {
	Driver           string        `yaml:"driver" validate:"required|in:memory,sqlite,redis"`
	SQLitePath       string        `yaml:"sqlitePath"`
	Redis            RedisConfig   `yaml:"redis"`
	SnapshotPath     string        `yaml:"snapshotPath"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName    string
	Debug      bool
	Path       string
	Bot        BotConfig        `yaml:"bot"`
	Channels   ChannelsConfig   `yaml:"channels"`
	Moderators []string         `yaml:"moderators" validate:"required|minLen:1"`
	Promotion  PromotionConfig  `yaml:"promotion"`
	Watermark  WatermarkConfig  `yaml:"watermark"`
	Submission SubmissionConfig `yaml:"submission"`
	Broadcast  BroadcastConfig  `yaml:"broadcast"`
	Sweep      SweepConfig      `yaml:"sweep"`
	Storage    StorageConfig    `yaml:"storage"`
	WebServer  Server           `yaml:"webServer"`
	Logger     LoggerConfig     `yaml:"logger"`
	Cache      CacheConfig      `yaml:"cache"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}
