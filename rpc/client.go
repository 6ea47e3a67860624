package rpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"solscan/config"
	"solscan/logs"
	"solscan/stats"
	"solscan/types"
)

// ===================== JSON-RPC 协议结构 =====================

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// RPCError 节点返回的 JSON-RPC 业务错误（非网络层错误，不重试）
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// getProgramAccounts 的过滤器参数，bytes 统一用 base64 编码
type memcmpFilter struct {
	Memcmp memcmpBody `json:"memcmp"`
}

type memcmpBody struct {
	Offset   int    `json:"offset"`
	Bytes    string `json:"bytes"`
	Encoding string `json:"encoding"`
}

type programAccountsOpts struct {
	Encoding   string         `json:"encoding"`
	Commitment string         `json:"commitment,omitempty"`
	Filters    []memcmpFilter `json:"filters,omitempty"`
}

// getProgramAccounts 返回 [{pubkey, account}, ...]
type keyedAccount struct {
	Pubkey  string      `json:"pubkey"`
	Account accountInfo `json:"account"`
}

type accountInfo struct {
	Data       []string `json:"data"` // [payload, encoding]
	Executable bool     `json:"executable"`
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	RentEpoch  uint64   `json:"rentEpoch"`
}

// ===================== 客户端 =====================

// Client 是 Solana JSON-RPC 节点客户端，对上实现 interfaces.Transport。
// memcmp 过滤器在节点侧执行，所以 SupportsFilters 返回 true。
type Client struct {
	endpoint   string
	httpClient *http.Client
	cfg        config.RPCConfig
	stats      *stats.Stats
	latency    *stats.LatencyRecorder
	Logger     logs.Logger
}

func NewClient(cfg config.RPCConfig, st *stats.Stats, logger logs.Logger) *Client {
	if st == nil {
		st = stats.NewStats()
	}
	if logger == nil {
		logger = logs.Default()
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: createHTTPClient(cfg),
		cfg:        cfg,
		stats:      st,
		latency:    stats.NewLatencyRecorder(1024),
		Logger:     logger,
	}
}

// FetchProgramAccounts 调用 getProgramAccounts 拉取某 program 下的账户，
// 过滤器原样下推到节点（offset + base64 bytes）。
func (c *Client) FetchProgramAccounts(ctx context.Context, req *types.QueryRequest) ([]types.ProgramAccount, error) {
	filters := make([]memcmpFilter, 0, len(req.Filters))
	for _, f := range req.Filters {
		filters = append(filters, memcmpFilter{Memcmp: memcmpBody{
			Offset:   f.Offset,
			Bytes:    base64.StdEncoding.EncodeToString(f.Bytes),
			Encoding: "base64",
		}})
	}

	params := []interface{}{
		req.ProgramID,
		programAccountsOpts{
			Encoding:   "base64",
			Commitment: c.cfg.Commitment,
			Filters:    filters,
		},
	}

	raw, err := c.call(ctx, "getProgramAccounts", params)
	if err != nil {
		return nil, err
	}

	var keyed []keyedAccount
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal getProgramAccounts result: %w", err)
	}

	accounts := make([]types.ProgramAccount, 0, len(keyed))
	for _, ka := range keyed {
		data, err := decodeAccountData(ka.Account.Data)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", ka.Pubkey, err)
		}
		accounts = append(accounts, types.ProgramAccount{
			Pubkey:     ka.Pubkey,
			Data:       data,
			Lamports:   ka.Account.Lamports,
			Owner:      ka.Account.Owner,
			Executable: ka.Account.Executable,
			RentEpoch:  ka.Account.RentEpoch,
		})
	}

	c.Logger.Debug("[RPC] getProgramAccounts program=%s filters=%d -> %d accounts",
		req.ProgramID, len(req.Filters), len(accounts))
	return accounts, nil
}

// SupportsFilters 节点侧执行 memcmp，调用方无需担心漏推
func (c *Client) SupportsFilters() bool {
	return true
}

// Probe 用 getVersion 验证节点可达，返回 solana-core 版本号
func (c *Client) Probe(ctx context.Context) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	raw, err := c.call(probeCtx, "getVersion", nil)
	if err != nil {
		return "", err
	}

	var version struct {
		SolanaCore string `json:"solana-core"`
	}
	if err := json.Unmarshal(raw, &version); err != nil {
		return "", fmt.Errorf("failed to unmarshal getVersion result: %w", err)
	}
	return version.SolanaCore, nil
}

// Latency 返回各方法的请求延迟分位数（P50/P95/P99/Max）
func (c *Client) Latency() map[string]stats.LatencySummary {
	return c.latency.Snapshot(false)
}

// ===================== 请求执行与重试 =====================

// call 执行一次 JSON-RPC 调用，网络层失败时按指数退避重试。
// 节点明确返回的 JSON-RPC error 不重试（重发也会得到同样的答案）。
func (c *Client) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		c.stats.RecordAPICall(method)

		start := time.Now()
		raw, retryable, err := c.post(ctx, payload)
		c.latency.Record(method, time.Since(start))

		if err == nil {
			return raw, nil
		}
		lastErr = err

		if !retryable || attempt >= c.cfg.MaxRetries {
			return nil, lastErr
		}

		// 指数退避：backoff = baseDelay * 2^attempt，上限 MaxRetryDelay
		backoff := c.cfg.BaseRetryDelay * time.Duration(math.Pow(2, float64(attempt)))
		if backoff > c.cfg.MaxRetryDelay || backoff <= 0 {
			backoff = c.cfg.MaxRetryDelay
		}
		c.Logger.Warn("[RPC] %s attempt %d/%d failed, retrying in %v: %v",
			method, attempt+1, c.cfg.MaxRetries+1, backoff, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// post 执行单次 HTTP POST，返回 (result, 是否可重试, error)
func (c *Client) post(ctx context.Context, payload []byte) (json.RawMessage, bool, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, nil)
	if err != nil {
		return nil, false, err
	}

	// 放 payload 到 body
	req.Body = io.NopCloser(bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		// 429 / 5xx 是节点过载或临时故障，可以重试
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// 多读 1 字节用于检测超限
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxResponseSize+1))
	if err != nil {
		return nil, true, err
	}
	if int64(len(body)) > c.cfg.MaxResponseSize {
		return nil, false, fmt.Errorf("response exceeds %d byte limit", c.cfg.MaxResponseSize)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal rpc response: %w", err)
	}
	if envelope.Error != nil {
		return nil, false, envelope.Error
	}
	return envelope.Result, false, nil
}

// decodeAccountData 解析 [payload, encoding] 二元组，只接受 base64
func decodeAccountData(tuple []string) ([]byte, error) {
	if len(tuple) == 0 {
		return nil, nil
	}
	if len(tuple) != 2 {
		return nil, fmt.Errorf("unexpected account data tuple of %d elements", len(tuple))
	}
	if tuple[1] != "base64" {
		return nil, fmt.Errorf("unexpected account data encoding %q", tuple[1])
	}
	data, err := base64.StdEncoding.DecodeString(tuple[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode account data: %w", err)
	}
	return data, nil
}
