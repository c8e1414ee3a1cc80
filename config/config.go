package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const DEFAULT_CALL_TIMEOUT = 30 * time.Second

// Config is loaded once before the workflow starts and never mutated.
// Steps validate the keys they need lazily and fail with a
// missing-configuration outcome when one is absent.
type Config struct {
	Endpoint        string
	CredentialID    string
	CredentialKey   string
	ListName        string
	CampaignName    string
	CampaignSubject string
	AllowedSenderID string
	RecipientFilter string
	SubscriberURL   string
	SubscriberFile  string
	TemplateFile    string
	LockDir         string
	DefaultListID   int64
	CallTimeout     time.Duration
}

// Load reads a KEY = VALUE properties file.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("properties")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}
	conf := Config{
		Endpoint:        v.GetString("ENDPOINT_URL"),
		CredentialID:    v.GetString("CREDENTIAL_ID"),
		CredentialKey:   v.GetString("CREDENTIAL_KEY"),
		ListName:        v.GetString("LIST_NAME"),
		CampaignName:    v.GetString("CAMPAIGN_NAME"),
		CampaignSubject: v.GetString("CAMPAIGN_SUBJECT"),
		AllowedSenderID: v.GetString("ALLOWED_SENDER_ID"),
		RecipientFilter: v.GetString("RECIPIENT_FILTER"),
		SubscriberURL:   v.GetString("SUBSCRIBER_URL"),
		SubscriberFile:  v.GetString("SUBSCRIBER_FILE"),
		TemplateFile:    v.GetString("TEMPLATE_FILE"),
		LockDir:         v.GetString("LOCK_DIR"),
		DefaultListID:   v.GetInt64("DEFAULT_LIST_ID"),
		CallTimeout:     DEFAULT_CALL_TIMEOUT,
	}
	if v.IsSet("CALL_TIMEOUT_SECONDS") {
		conf.CallTimeout = time.Duration(v.GetInt("CALL_TIMEOUT_SECONDS")) * time.Second
	}
	return conf, nil
}
