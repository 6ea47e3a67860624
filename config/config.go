// config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config 主配置结构
type Config struct {
	RPC    RPCConfig    `json:"rpc"`
	Cache  CacheConfig  `json:"cache"`
	Query  QueryConfig  `json:"query"`
	Output OutputConfig `json:"output"`
	Log    LogConfig    `json:"log"`
}

// RPCConfig Solana JSON-RPC 客户端配置
type RPCConfig struct {
	// 节点配置
	Endpoint   string `json:"endpoint"`   // "https://api.mainnet-beta.solana.com"
	Commitment string `json:"commitment"` // "confirmed"

	// HTTP配置
	Timeout         time.Duration `json:"timeout"`         // 60 * time.Second
	ProbeTimeout    time.Duration `json:"probeTimeout"`    // 10 * time.Second
	MaxResponseSize int64         `json:"maxResponseSize"` // 512 << 20 (512MB)
	UserAgent       string        `json:"userAgent"`       // "solscan/1.0"

	// HTTP/3配置（部分私有节点支持）
	EnableHTTP3         bool          `json:"enableHttp3"`         // false
	QUICKeepAlivePeriod time.Duration `json:"quicKeepAlivePeriod"` // 10 * time.Second
	QUICMaxIdleTimeout  time.Duration `json:"quicMaxIdleTimeout"`  // 5 * time.Minute

	// 重试配置
	MaxRetries     int           `json:"maxRetries"`     // 3
	BaseRetryDelay time.Duration `json:"baseRetryDelay"` // 1 * time.Second
	MaxRetryDelay  time.Duration `json:"maxRetryDelay"`  // 30 * time.Second
}

// CacheConfig 本地快照缓存配置
type CacheConfig struct {
	// 开关与路径
	Enabled bool   `json:"enabled"` // false
	Dir     string `json:"dir"`     // "./solscan-cache"

	// 快照有效期（过期后重新拉取）
	SnapshotTTL time.Duration `json:"snapshotTTL"` // 10 * time.Minute

	// BadgerDB配置
	ValueLogFileSize int64         `json:"valueLogFileSize"` // 64 << 20 (64MB)
	FlushInterval    time.Duration `json:"flushInterval"`    // 200 * time.Millisecond

	// 写队列配置
	WriteQueueSize      int   `json:"writeQueueSize"`      // 10000
	WriteBatchSoftLimit int64 `json:"writeBatchSoftLimit"` // 8 * 1024 * 1024 (8MB)
	MaxCountPerTxn      int   `json:"maxCountPerTxn"`      // 500
	PerEntryOverhead    int   `json:"perEntryOverhead"`    // 32

	// 热点账户内存缓存
	HotAccountCacheSize int `json:"hotAccountCacheSize"` // 4096
}

// QueryConfig 查询执行配置
type QueryConfig struct {
	// 本地匹配工作池
	MatchWorkerCount int `json:"matchWorkerCount"` // 8

	// interest 统计默认条数
	DefaultInterestLimit int `json:"defaultInterestLimit"` // 5

	// 限制配置
	MaxConstraints int `json:"maxConstraints"` // 16
	MaxPathDepth   int `json:"maxPathDepth"`   // 16
}

// OutputConfig 结果输出配置
type OutputConfig struct {
	Format       string `json:"format"`       // "display"
	JSONIndent   string `json:"jsonIndent"`   // "  "
	CompressLZ4  bool   `json:"compressLz4"`  // false（写文件时可启用）
	MaxDumpBytes int    `json:"maxDumpBytes"` // 64（display 模式下原始数据截断长度）
}

// LogConfig 日志配置
type LogConfig struct {
	Level int `json:"level"` // 3 (LevelInfo)
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RPC: RPCConfig{
			Endpoint:            "https://api.mainnet-beta.solana.com",
			Commitment:          "confirmed",
			Timeout:             60 * time.Second,
			ProbeTimeout:        10 * time.Second,
			MaxResponseSize:     512 << 20,
			UserAgent:           "solscan/1.0",
			EnableHTTP3:         false,
			QUICKeepAlivePeriod: 10 * time.Second,
			QUICMaxIdleTimeout:  5 * time.Minute,
			MaxRetries:          3,
			BaseRetryDelay:      1 * time.Second,
			MaxRetryDelay:       30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:             false,
			Dir:                 "./solscan-cache",
			SnapshotTTL:         10 * time.Minute,
			ValueLogFileSize:    64 << 20,
			FlushInterval:       200 * time.Millisecond,
			WriteQueueSize:      10000,
			WriteBatchSoftLimit: 8 * 1024 * 1024,
			MaxCountPerTxn:      500,
			PerEntryOverhead:    32,
			HotAccountCacheSize: 4096,
		},
		Query: QueryConfig{
			MatchWorkerCount:     8,
			DefaultInterestLimit: 5,
			MaxConstraints:       16,
			MaxPathDepth:         16,
		},
		Output: OutputConfig{
			Format:       "display",
			JSONIndent:   "  ",
			CompressLZ4:  false,
			MaxDumpBytes: 64,
		},
		Log: LogConfig{
			Level: 3,
		},
	}
}

// LoadFromFile 从 JSON 文件加载配置，文件不存在时返回默认配置
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Validate 验证配置合法性
func (c *Config) Validate() error {
	if c.RPC.Endpoint == "" {
		return fmt.Errorf("RPC endpoint must not be empty")
	}
	if c.RPC.Timeout <= 0 {
		return fmt.Errorf("RPC timeout must be positive")
	}
	if c.Query.MatchWorkerCount <= 0 {
		return fmt.Errorf("MatchWorkerCount must be positive")
	}
	if c.Query.DefaultInterestLimit <= 0 {
		return fmt.Errorf("DefaultInterestLimit must be positive")
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		return fmt.Errorf("cache dir must not be empty when cache is enabled")
	}
	switch c.Output.Format {
	case "display", "json":
	default:
		return fmt.Errorf("unknown output format: %s", c.Output.Format)
	}
	return nil
}
