package rpc

import (
	"crypto/tls"
	"net/http"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"

	"solscan/config"
)

// createHTTPClient 按配置构建 HTTP 客户端，默认走标准 HTTP/1.1+TLS，
// 节点支持时可切换 HTTP/3（QUIC）。
func createHTTPClient(cfg config.RPCConfig) *http.Client {
	if cfg.EnableHTTP3 {
		return createHTTP3Client(cfg)
	}
	return &http.Client{
		Timeout: cfg.Timeout,
	}
}

// 创建非单例的 HTTP/3 客户端
func createHTTP3Client(cfg config.RPCConfig) *http.Client {
	tlsCfg := &tls.Config{
		MinVersion:         tls.VersionTLS13,
		MaxVersion:         tls.VersionTLS13,
		ClientSessionCache: tls.NewLRUClientSessionCache(128),
		// 添加ALPN协议支持
		NextProtos: []string{"h3", "h3-29", "h3-28", "h3-27"},
	}

	tr := &http3.Transport{
		TLSClientConfig: tlsCfg,
		QUICConfig: &quic.Config{
			KeepAlivePeriod: cfg.QUICKeepAlivePeriod,
			MaxIdleTimeout:  cfg.QUICMaxIdleTimeout,
			// 可选：添加0-RTT支持
			Allow0RTT: true,
		},
	}

	return &http.Client{
		Transport: tr,
		Timeout:   cfg.Timeout,
	}
}
