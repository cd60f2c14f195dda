package config

import "time"

type Config struct {
	Debug    bool         `mapstructure:"debug"`
	Upload   Upload       `mapstructure:"upload"`
	Accept   []AcceptRule `mapstructure:"accept" validate:"required,min=1,dive"`
	Limits   Limits       `mapstructure:"limits"`
	Messages Messages     `mapstructure:"messages"`
	Receiver Receiver     `mapstructure:"receiver"`
	Metrics  Metrics      `mapstructure:"metrics"`
}

type Upload struct {
	Endpoint string            `mapstructure:"endpoint" validate:"required,url"`
	Field    string            `mapstructure:"field" validate:"required"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	Headers  map[string]string `mapstructure:"headers"`
}

type AcceptRule struct {
	MIME       string   `mapstructure:"mime" validate:"required,mimetype"`
	Extensions []string `mapstructure:"extensions" validate:"dive,extension"`
}

type Limits struct {
	MaxFiles    int   `mapstructure:"max_files" validate:"min=0"`
	MinFileSize int64 `mapstructure:"min_file_size" validate:"min=0"`
	MaxFileSize int64 `mapstructure:"max_file_size" validate:"min=0"`
}

// Messages overrides the notification texts. Empty fields keep the defaults.
// The rejection texts are format strings: the invalid type title takes the
// file's type, the size titles take its name and the invalid type
// description takes the accepted formats.
type Messages struct {
	SuccessTitle           string `mapstructure:"success_title"`
	SuccessDescription     string `mapstructure:"success_description"`
	FailureTitle           string `mapstructure:"failure_title"`
	FailureFallback        string `mapstructure:"failure_fallback"`
	InvalidTypeTitle       string `mapstructure:"invalid_type_title"`
	InvalidTypeDescription string `mapstructure:"invalid_type_description"`
	TooLargeTitle          string `mapstructure:"too_large_title"`
	TooSmallTitle          string `mapstructure:"too_small_title"`
	TooManyTitle           string `mapstructure:"too_many_title"`
}

type Receiver struct {
	Address         string `mapstructure:"address" validate:"required,hostname|ip"`
	Port            int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path            string `mapstructure:"path" validate:"required,startswith=/"`
	MaxPayloadSize  int64  `mapstructure:"max_payload_size" validate:"required,min=1"`
	MaxMultipartMem int64  `mapstructure:"max_multipart_mem" validate:"required,min=1"`
	PublicUrl       string `mapstructure:"public_url" validate:"omitempty,url"`
	LocationPattern string `mapstructure:"location_pattern" validate:"omitempty,locationpattern"`
}

// Metrics.Textfile, when set, receives the widget metrics in the Prometheus
// text format after each upload run.
type Metrics struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace" validate:"omitempty,identifier"`
	Textfile  string `mapstructure:"textfile" validate:"omitempty,filepath"`
}
