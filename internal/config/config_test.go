package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr    = "localhost:8080"
		uri     = "mongodb://localhost:27017"
		dbName  = "reelchat"
		key     = "c29tZV9zZWNyZXQ="
		orig    = []string{"http://localhost:3000"}
		brokers = []string{"localhost:9092"}
		topic   = "message.stored"
	)

	tcases := []struct {
		name    string
		addr    string
		uri     string
		dbName  string
		key     string
		brokers []string
		topic   string
		err     bool
	}{
		{
			name:    "valid config",
			addr:    addr,
			uri:     uri,
			dbName:  dbName,
			key:     key,
			brokers: brokers,
			topic:   topic,
			err:     false,
		},
		{
			name:   "no kafka",
			addr:   addr,
			uri:    uri,
			dbName: dbName,
			key:    key,
			err:    false,
		},
		{
			name:   "empty address",
			addr:   "",
			uri:    uri,
			dbName: dbName,
			key:    key,
			err:    true,
		},
		{
			name:   "empty mongo URI",
			addr:   addr,
			uri:    "",
			dbName: dbName,
			key:    key,
			err:    true,
		},
		{
			name:   "empty mongo database",
			addr:   addr,
			uri:    uri,
			dbName: "",
			key:    key,
			err:    true,
		},
		{
			name:   "empty signing key",
			addr:   addr,
			uri:    uri,
			dbName: dbName,
			key:    "",
			err:    true,
		},
		{
			name:    "brokers without topic",
			addr:    addr,
			uri:     uri,
			dbName:  dbName,
			key:     key,
			brokers: brokers,
			topic:   "",
			err:     true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := NewConfig(tc.addr, tc.uri, tc.dbName, tc.key, orig, tc.brokers, tc.topic, 0)
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.addr, config.ServerAddr, "expected server address to match")
			assert.Equal(t, tc.uri, config.MongoURI, "expected mongo URI to match")
			assert.Equal(t, tc.dbName, config.MongoDatabase, "expected mongo database to match")
			assert.Equal(t, orig, config.AllowedOrigins, "expected allowed origins to match")
			assert.NotEmpty(t, config.SigningKey, "expected signing key to be decoded and not empty")
			assert.Equal(t, defaultOpTimeout, config.OpTimeout, "expected zero op timeout to fall back to default")
		})
	}
}

func Test_decodeSigningSecret(t *testing.T) {
	tcases := []struct {
		name         string
		base64Secret string
		expectedKey  []byte
		expectError  bool
	}{
		{
			name:         "valid base64 secret",
			base64Secret: "c29tZV9zZWNyZXQ=",
			expectedKey:  []byte("some_secret"),
			expectError:  false,
		},
		{
			name:         "invalid base64 secret",
			base64Secret: "invalid_base64",
			expectedKey:  nil,
			expectError:  true,
		},
		{
			name:         "empty base64 secret",
			base64Secret: "",
			expectedKey:  nil,
			expectError:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := decodeSigningSecret(tc.base64Secret)
			if tc.expectError {
				assert.Error(t, err, "expected error for base64 secret: %s", tc.base64Secret)
			} else {
				assert.NoError(t, err, "expected no error for base64 secret: %s", tc.base64Secret)
				assert.Equal(t, tc.expectedKey, key, "expected decoded key to match for base64 secret: %s", tc.base64Secret)
			}
		})
	}
}

func TestNewConfig_opTimeout(t *testing.T) {
	config, err := NewConfig("localhost:8080", "mongodb://localhost:27017", "reelchat",
		"c29tZV9zZWNyZXQ=", nil, nil, "", 2*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, 2*time.Second, config.OpTimeout)
}
