package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/spf13/viper"
)

const (
	DefaultPromotionThreshold = 10
	DefaultActivityWindow     = 36 * time.Hour
	DefaultSweepInterval      = 3600 * time.Second
	DefaultSweepDelay         = 10 * time.Second
	DefaultWatermarkURL       = "https://i.imgur.com/rZTD37V.png"
	DefaultUserAgent          = "Mozilla/5.0"
	DefaultGlyph              = "⭐"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("promotion.threshold", DefaultPromotionThreshold)
	v.SetDefault("promotion.window", DefaultActivityWindow)
	v.SetDefault("sweep.interval", DefaultSweepInterval)
	v.SetDefault("sweep.initialDelay", DefaultSweepDelay)
	v.SetDefault("watermark.url", DefaultWatermarkURL)
	v.SetDefault("watermark.userAgent", DefaultUserAgent)
	v.SetDefault("watermark.fetchTimeout", 15*time.Second)
	v.SetDefault("watermark.cacheTTL", time.Hour)
	v.SetDefault("broadcast.glyph", DefaultGlyph)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.snapshotInterval", 5*time.Minute)
	v.SetDefault("storage.redis.keyPrefix", "vouch:activity:")
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	v.BindEnv("bot.token", "BOT_TOKEN")
	v.BindEnv("bot.guildId", "VOUCH_GUILD_ID")
	v.BindEnv("channels.broadcast", "CHANNEL_ID")
	v.BindEnv("channels.moderation", "VOUCH_MODERATION_CHANNEL")
	v.BindEnv("moderators", "ADMIN_IDS")
	v.BindEnv("promotion.roleId", "VOUCH_PROMOTION_ROLE")
	v.BindEnv("storage.driver", "VOUCH_STORAGE_DRIVER")
	v.BindEnv("logger.level", "VOUCH_LOG_LEVEL")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "DuffVouchBot"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
