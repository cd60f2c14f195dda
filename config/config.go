package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "DROPPER"

// Default returns the configuration used when no file overrides a key.
func Default() *Config {
	return &Config{
		Upload: Upload{
			Endpoint: "http://localhost:3000/api/storage/uploadthing",
			Field:    "files",
		},
		Accept: []AcceptRule{
			{MIME: "image/png", Extensions: []string{".png"}},
			{MIME: "image/jpg", Extensions: []string{".jpg"}},
			{MIME: "image/jpeg", Extensions: []string{".jpeg"}},
		},
		Receiver: Receiver{
			Address:         "127.0.0.1",
			Port:            3000,
			Path:            "/api/storage/uploadthing",
			MaxPayloadSize:  32 << 20,
			MaxMultipartMem: 8 << 20,
			LocationPattern: "{year}/{month}/{filename}",
		},
		Metrics: Metrics{
			Namespace: "dropper",
		},
	}
}

func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterValidation("mimetype", ValidateMimeType)
	validate.RegisterValidation("extension", ValidateExtension)
	validate.RegisterValidation("identifier", ValidateIdentifier)
	validate.RegisterValidation("locationpattern", ValidateLocationPattern)

	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Upload.Timeout < 0 {
		return errors.New("upload.timeout must not be negative")
	}

	if c.Limits.MaxFileSize > 0 && c.Limits.MaxFileSize < c.Limits.MinFileSize {
		return fmt.Errorf("limits.max_file_size (%d) is smaller than limits.min_file_size (%d)", c.Limits.MaxFileSize, c.Limits.MinFileSize)
	}

	return nil
}

// LoadConfig reads the YAML file at path on top of Default and applies
// DROPPER_* environment overrides. An empty path loads defaults and
// environment only.
func LoadConfig(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			log.Println("read in fail")
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Println("unmarshal fail")
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		log.Println("validate fail")
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("debug", d.Debug)
	v.SetDefault("upload.endpoint", d.Upload.Endpoint)
	v.SetDefault("upload.field", d.Upload.Field)
	v.SetDefault("upload.timeout", d.Upload.Timeout)

	accept := make([]map[string]any, 0, len(d.Accept))
	for _, rule := range d.Accept {
		accept = append(accept, map[string]any{
			"mime":       rule.MIME,
			"extensions": rule.Extensions,
		})
	}
	v.SetDefault("accept", accept)

	v.SetDefault("limits.max_files", d.Limits.MaxFiles)
	v.SetDefault("limits.min_file_size", d.Limits.MinFileSize)
	v.SetDefault("limits.max_file_size", d.Limits.MaxFileSize)

	v.SetDefault("messages.success_title", "")
	v.SetDefault("messages.success_description", "")
	v.SetDefault("messages.failure_title", "")
	v.SetDefault("messages.failure_fallback", "")
	v.SetDefault("messages.invalid_type_title", "")
	v.SetDefault("messages.invalid_type_description", "")
	v.SetDefault("messages.too_large_title", "")
	v.SetDefault("messages.too_small_title", "")
	v.SetDefault("messages.too_many_title", "")

	v.SetDefault("receiver.address", d.Receiver.Address)
	v.SetDefault("receiver.port", d.Receiver.Port)
	v.SetDefault("receiver.path", d.Receiver.Path)
	v.SetDefault("receiver.max_payload_size", d.Receiver.MaxPayloadSize)
	v.SetDefault("receiver.max_multipart_mem", d.Receiver.MaxMultipartMem)
	v.SetDefault("receiver.public_url", d.Receiver.PublicUrl)
	v.SetDefault("receiver.location_pattern", d.Receiver.LocationPattern)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}
