package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/victorjacobs/go-flexit/flexit"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const DefaultFile = "flexit.yaml"

type Configuration struct {
	Name     string
	LogLevel string
	Flexit   Flexit
	Mqtt     Mqtt
	HTTP     HTTP
}

type Flexit struct {
	BaseURL         string
	Username        string
	Password        string
	SubscriptionKey string
	PlantID         string
	UpdateInterval  time.Duration
	Timeout         time.Duration
	ModeTable       string
}

type Mqtt struct {
	Broker          string
	Username        string
	Password        string
	ClientID        string
	DiscoveryPrefix string
	TopicPrefix     string
}

type HTTP struct {
	Address string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "Flexit")
	v.SetDefault("log_level", "info")

	v.SetDefault("flexit.base_url", flexit.DefaultBaseURL)
	v.SetDefault("flexit.update_interval", "30m")
	v.SetDefault("flexit.timeout", flexit.DefaultTimeout.String())
	v.SetDefault("flexit.mode_table", flexit.ClimatixModes.Name)

	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.discovery_prefix", "homeassistant")
	v.SetDefault("mqtt.topic_prefix", "flexit")

	v.SetDefault("http.address", ":8080")
}

// LoadConfiguration reads filename, if present, and applies FLEXIT_
// environment overrides on top.
func LoadConfiguration(filename string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("flexit")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("could not read %s: %w", filename, err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Configuration, error) {
	interval, err := minutesOrDuration(v.Get("flexit.update_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid flexit.update_interval: %w", err)
	}
	timeout, err := cast.ToDurationE(v.Get("flexit.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid flexit.timeout: %w", err)
	}

	cfg := &Configuration{
		Name:     v.GetString("name"),
		LogLevel: v.GetString("log_level"),
		Flexit: Flexit{
			BaseURL:         v.GetString("flexit.base_url"),
			Username:        v.GetString("flexit.username"),
			Password:        v.GetString("flexit.password"),
			SubscriptionKey: v.GetString("flexit.subscription_key"),
			PlantID:         v.GetString("flexit.plant_id"),
			UpdateInterval:  interval,
			Timeout:         timeout,
			ModeTable:       v.GetString("flexit.mode_table"),
		},
		Mqtt: Mqtt{
			Broker:          v.GetString("mqtt.broker"),
			Username:        v.GetString("mqtt.username"),
			Password:        v.GetString("mqtt.password"),
			ClientID:        v.GetString("mqtt.client_id"),
			DiscoveryPrefix: v.GetString("mqtt.discovery_prefix"),
			TopicPrefix:     v.GetString("mqtt.topic_prefix"),
		},
		HTTP: HTTP{
			Address: v.GetString("http.address"),
		},
	}
	if cfg.Mqtt.ClientID == "" {
		cfg.Mqtt.ClientID = "flexit-" + uuid.NewString()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// minutesOrDuration accepts a bare number of minutes or a duration string.
func minutesOrDuration(value any) (time.Duration, error) {
	switch v := value.(type) {
	case int, int64, float64:
		return time.Duration(cast.ToFloat64(v) * float64(time.Minute)), nil
	case string:
		if minutes, err := cast.ToIntE(v); err == nil {
			return time.Duration(minutes) * time.Minute, nil
		}
	}
	return cast.ToDurationE(value)
}

func (c *Configuration) Validate() error {
	var missing []string
	for key, value := range map[string]string{
		"flexit.username":         c.Flexit.Username,
		"flexit.password":         c.Flexit.Password,
		"flexit.subscription_key": c.Flexit.SubscriptionKey,
	} {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if _, err := flexit.ModeTableByName(c.Flexit.ModeTable); err != nil {
		return err
	}
	if c.Flexit.UpdateInterval <= 0 {
		return fmt.Errorf("flexit.update_interval must be positive, got %v", c.Flexit.UpdateInterval)
	}
	if c.Flexit.Timeout <= 0 {
		return fmt.Errorf("flexit.timeout must be positive, got %v", c.Flexit.Timeout)
	}

	return nil
}

// ClientOptions builds the Flexit client options.
func (f *Flexit) ClientOptions() flexit.Options {
	modes, _ := flexit.ModeTableByName(f.ModeTable)

	return flexit.Options{
		BaseURL:         f.BaseURL,
		Username:        f.Username,
		Password:        f.Password,
		SubscriptionKey: f.SubscriptionKey,
		PlantID:         flexit.PlantID(f.PlantID),
		Timeout:         f.Timeout,
		Modes:           modes,
	}
}

// AvailabilityTopic carries the bridge's online state.
func (m *Mqtt) AvailabilityTopic() string {
	return m.TopicPrefix + "/availability"
}

func (m *Mqtt) ClientOptions(log *zap.SugaredLogger) *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(m.Broker).
		SetClientID(m.ClientID).
		SetUsername(m.Username).
		SetPassword(m.Password).
		SetAutoReconnect(true).
		SetWill(m.AvailabilityTopic(), "offline", 1, true).
		SetConnectionLostHandler(func(client mqtt.Client, err error) {
			log.Warnf("MQTT connection lost: %v", err)
		}).
		SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
			log.Infof("MQTT reconnecting")
		})
}
