package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name" json:"name" validate:"required"`
	Host       string            `yaml:"host" json:"host"`
	Port       int               `yaml:"port" json:"port"`
	LogLevel   string            `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=DEBUG INFO WARNING ERROR debug info warning error"`
	LogFormat  string            `yaml:"log_format" json:"log_format" validate:"omitempty,oneof=console json"`
	LogFile    string            `yaml:"log_file" json:"log_file"`
	GrpcHost   string            `yaml:"grpc_host" json:"grpc_host"`
	GrpcPort   int               `yaml:"grpc_port" json:"grpc_port"`
	Xapi       MXapiConfig       `yaml:"xapi" json:"xapi"`
	Storage    MStorageConfig    `yaml:"storage" json:"storage"`
	Cache      MCacheConfig      `yaml:"cache" json:"cache"`
	DataSource MDataSourceConfig `yaml:"data_source" json:"data_source"`
}

// MXapiConfig describes how to reach the xAPI servers and who to log in as.
type MXapiConfig struct {
	Mode      string `yaml:"mode" json:"mode" validate:"oneof=demo real"`
	Transport string `yaml:"transport" json:"transport" validate:"oneof=socket websocket"`

	// Socket transport. Ports default from Mode.
	Host       string `yaml:"host" json:"host"`
	Port       int    `yaml:"port" json:"port" validate:"gte=0,lte=65535"`
	StreamPort int    `yaml:"stream_port" json:"stream_port" validate:"gte=0,lte=65535"`
	Plaintext  bool   `yaml:"plaintext" json:"plaintext"`

	// WebSocket transport. URLs default from Mode.
	URL       string `yaml:"url" json:"url"`
	StreamURL string `yaml:"stream_url" json:"stream_url"`

	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	AppName  string `yaml:"app_name" json:"app_name"`

	DialTimeout          int `yaml:"dial_timeout" json:"dial_timeout" validate:"gte=0"`         // seconds
	RequestTimeout       int `yaml:"request_timeout" json:"request_timeout" validate:"gte=0"`   // seconds
	MinRequestIntervalMs int `yaml:"min_request_interval_ms" json:"min_request_interval_ms" validate:"gte=0"`
	MaxMessageSize       int `yaml:"max_message_size" json:"max_message_size" validate:"gte=0"` // bytes
	MaxRetries           int `yaml:"retries" json:"retries" validate:"gte=0"`
	KeepAliveSeconds     int `yaml:"keep_alive_seconds" json:"keep_alive_seconds" validate:"gte=0"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type" json:"db_type" validate:"omitempty,oneof=sqlite postgres none"`
	DBPath             string `yaml:"db_path" json:"db_path"`
	DBConnectionString string `yaml:"db_connection_string" json:"db_connection_string"`
}

type MCacheConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	TTLSeconds int  `yaml:"ttl_seconds" json:"ttl_seconds" validate:"gte=0"`
}

// MDataSourceConfig drives the gateway tick poller.
type MDataSourceConfig struct {
	DataRetentionDays     int      `yaml:"data_retention_days" json:"data_retention_days" validate:"gte=0"`
	UpdateIntervalSeconds int      `yaml:"update_interval_seconds" json:"update_interval_seconds" validate:"gte=0"`
	Symbols               []string `yaml:"symbols" json:"symbols"`
	Level                 int      `yaml:"level" json:"level" validate:"gte=-1"`
	RespectMarketHours    bool     `yaml:"respect_market_hours" json:"respect_market_hours"`
}
