package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "campaign.properties")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
ENDPOINT_URL = http://mail.example.com/rpc
CREDENTIAL_ID = acme
CREDENTIAL_KEY = s3cret
LIST_NAME = newsletter
CAMPAIGN_NAME = Summer Sale
CAMPAIGN_SUBJECT = Big savings inside
ALLOWED_SENDER_ID = sender-9
RECIPIENT_FILTER = all-active
SUBSCRIBER_FILE = /data/users.json
LOCK_DIR = /var/run/mailflow
DEFAULT_LIST_ID = 17
CALL_TIMEOUT_SECONDS = 5
`)
	conf, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://mail.example.com/rpc", conf.Endpoint)
	require.Equal(t, "acme", conf.CredentialID)
	require.Equal(t, "s3cret", conf.CredentialKey)
	require.Equal(t, "newsletter", conf.ListName)
	require.Equal(t, "Summer Sale", conf.CampaignName)
	require.Equal(t, "Big savings inside", conf.CampaignSubject)
	require.Equal(t, "sender-9", conf.AllowedSenderID)
	require.Equal(t, "all-active", conf.RecipientFilter)
	require.Equal(t, "/data/users.json", conf.SubscriberFile)
	require.Equal(t, "/var/run/mailflow", conf.LockDir)
	require.Equal(t, int64(17), conf.DefaultListID)
	require.Equal(t, 5*time.Second, conf.CallTimeout)
}

func TestLoadDefaultsTimeout(t *testing.T) {
	path := writeConfig(t, "ENDPOINT_URL = http://mail.example.com/rpc\n")
	conf, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DEFAULT_CALL_TIMEOUT, conf.CallTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.properties"))
	require.Error(t, err)
}
