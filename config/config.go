package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config はアプリケーションの設定を保持します。
type Config struct {
	Discord struct {
		Token                 string `mapstructure:"token"`
		GuildID               string `mapstructure:"guild_id"`
		TransactionsChannelID string `mapstructure:"transactions_channel_id"`
	} `mapstructure:"discord"`
	Roles struct {
		AdminIDs        []string `mapstructure:"admin_ids"`
		ExecIDs         []string `mapstructure:"exec_ids"`
		FreeAgentID     string   `mapstructure:"free_agent_id"`
		StaffID         string   `mapstructure:"staff_id"`
		AssistantID     string   `mapstructure:"assistant_id"`
		BulkSyncRevokes bool     `mapstructure:"bulk_sync_revokes"`
	} `mapstructure:"roles"`
	Storage struct {
		PlayersPath string `mapstructure:"players_path"`
		TeamsPath   string `mapstructure:"teams_path"`
		HistoryPath string `mapstructure:"history_path"`
	} `mapstructure:"storage"`
	League struct {
		RosterLimit  int           `mapstructure:"roster_limit"`
		OfferTimeout time.Duration `mapstructure:"offer_timeout"`
	} `mapstructure:"league"`
	Schedule struct {
		RoleSync string `mapstructure:"role_sync"`
	} `mapstructure:"schedule"`
	Backup struct {
		Bucket          string `mapstructure:"bucket"`
		Endpoint        string `mapstructure:"endpoint"`
		Region          string `mapstructure:"region"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		Prefix          string `mapstructure:"prefix"`
		Schedule        string `mapstructure:"schedule"`
	} `mapstructure:"backup"`
	Web struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"web"`
	Log struct {
		File  string `mapstructure:"file"`
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

var Cfg *Config

// envKeys は LEAGUE_ 環境変数で上書きできる全てのキーです。Config のフィールドと揃えること。
var envKeys = []string{
	"discord.token",
	"discord.guild_id",
	"discord.transactions_channel_id",
	"roles.admin_ids",
	"roles.exec_ids",
	"roles.free_agent_id",
	"roles.staff_id",
	"roles.assistant_id",
	"roles.bulk_sync_revokes",
	"storage.players_path",
	"storage.teams_path",
	"storage.history_path",
	"league.roster_limit",
	"league.offer_timeout",
	"schedule.role_sync",
	"backup.bucket",
	"backup.endpoint",
	"backup.region",
	"backup.access_key_id",
	"backup.secret_access_key",
	"backup.prefix",
	"backup.schedule",
	"web.addr",
	"log.file",
	"log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.players_path", "registered_players.json")
	v.SetDefault("storage.teams_path", "team_data.json")
	v.SetDefault("storage.history_path", "league.db")
	v.SetDefault("league.roster_limit", 20)
	v.SetDefault("league.offer_timeout", 600*time.Second)
	v.SetDefault("schedule.role_sync", "@every 6h")
	v.SetDefault("backup.region", "auto")
	v.SetDefault("backup.prefix", "league")
	v.SetDefault("backup.schedule", "@daily")
	v.SetDefault("log.file", "league.log")
	v.SetDefault("log.level", "info")
}

// LoadConfig は .env と config.yaml から設定を読み込みます。
// LEAGUE_DISCORD_TOKEN のような環境変数が設定ファイルの値より優先されます。
func LoadConfig(paths ...string) (*Config, error) {
	// .env が無いのは正常
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("league")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	Cfg = &cfg
	return &cfg, nil
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Discord.Token == "" || c.Discord.Token == "YOUR_DISCORD_BOT_TOKEN_HERE" {
		errs = append(errs, errors.New("discord.token is not set"))
	}
	if c.Discord.GuildID == "" {
		errs = append(errs, errors.New("discord.guild_id is not set"))
	}
	if c.League.RosterLimit <= 0 {
		errs = append(errs, fmt.Errorf("league.roster_limit must be positive, got %d", c.League.RosterLimit))
	}
	if c.League.OfferTimeout <= 0 {
		errs = append(errs, fmt.Errorf("league.offer_timeout must be positive, got %s", c.League.OfferTimeout))
	}
	if c.Backup.Bucket != "" && (c.Backup.AccessKeyID == "" || c.Backup.SecretAccessKey == "") {
		errs = append(errs, errors.New("backup.bucket is set but credentials are missing"))
	}
	return errors.Join(errs...)
}

// PrivilegedRoleIDs returns admin and executive roles as one set.
func (c *Config) PrivilegedRoleIDs() []string {
	ids := make([]string, 0, len(c.Roles.AdminIDs)+len(c.Roles.ExecIDs))
	ids = append(ids, c.Roles.AdminIDs...)
	return append(ids, c.Roles.ExecIDs...)
}
