package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"solscan/codec"
	"solscan/config"
	"solscan/db"
	"solscan/idl"
	"solscan/interfaces"
	"solscan/logs"
	"solscan/output"
	"solscan/query"
	"solscan/rpc"
	"solscan/stats"
	"solscan/types"
	"solscan/utils"
)

// stringList 可重复传入的 flag（-path a -path b）
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	cfg := config.DefaultConfig()

	var paths, values stringList

	rpcURL := flag.String("rpc", cfg.RPC.Endpoint, "Solana JSON-RPC endpoint")
	idlPath := flag.String("idl", "", "Path to the IDL JSON file")
	programID := flag.String("program", "", "Program ID of the Solana program")
	accountName := flag.String("name", "", "Name of the account to search")
	flag.Var(&paths, "path", "Path to the variable in the account (can be specified multiple times)")
	flag.Var(&values, "value", "Value of the variable to search for (order must match paths)")
	outputPath := flag.String("output", "", "File to output results if there are too many accounts")
	interest := flag.String("interest", "", "Variable of interest to analyze")
	displayLimit := flag.Int("limit", 5, "Maximum number of accounts to display in the console")
	configPath := flag.String("config", "", "Path to JSON config file")
	cacheDir := flag.String("cache", "", "Enable the snapshot cache at this directory")
	offline := flag.Bool("offline", false, "Answer from the snapshot cache only, no RPC")
	useHTTP3 := flag.Bool("http3", false, "Use HTTP/3 (QUIC) transport")
	verbose := flag.Bool("v", false, "Verbose logging")
	cacheInspect := flag.Bool("cache-inspect", false, "Print snapshot cache contents and exit")
	cachePurge := flag.Bool("cache-purge", false, "Purge expired snapshots and exit")
	flag.Parse()

	if *configPath != "" {
		loaded, err := config.LoadFromFile(*configPath)
		if err != nil {
			fatalf("Error loading config: %v", err)
		}
		if err := loaded.Validate(); err != nil {
			fatalf("Error in config: %v", err)
		}
		cfg = loaded
	}

	// 命令行 flag 覆盖配置文件
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["rpc"] {
		cfg.RPC.Endpoint = *rpcURL
	}
	if set["http3"] {
		cfg.RPC.EnableHTTP3 = *useHTTP3
	}
	if *cacheDir != "" {
		cfg.Cache.Enabled = true
		cfg.Cache.Dir = *cacheDir
	}
	if *offline {
		// 离线模式只认缓存
		cfg.Cache.Enabled = true
	}
	if *verbose {
		cfg.Log.Level = logs.LevelDebug
	}
	logs.SetLevel(cfg.Log.Level)

	// 缓存管理模式：看一眼/清一轮就退出
	if *cacheInspect || *cachePurge {
		runCacheAdmin(cfg, *cacheInspect, *cachePurge)
		return
	}

	if *idlPath == "" || *programID == "" || *accountName == "" {
		fmt.Fprintln(os.Stderr, "Error: -idl, -program and -name are required")
		flag.Usage()
		os.Exit(1)
	}
	if len(paths) != len(values) {
		fmt.Fprintln(os.Stderr, "Error: The number of paths and values must match")
		os.Exit(1)
	}

	idlDoc, err := os.ReadFile(*idlPath)
	if err != nil {
		fatalf("Failed to read IDL file: %v", err)
	}
	catalog, err := idl.Parse(idlDoc)
	if err != nil {
		fatalf("Error parsing IDL: %v", err)
	}
	at, err := catalog.Account(*accountName)
	if err != nil {
		fatalf("Error: %v", err)
	}

	st := stats.NewStats()
	client := rpc.NewClient(cfg.RPC, st, logs.Default())

	var transport interfaces.Transport = client
	if cfg.Cache.Enabled {
		mgr, err := db.NewManagerWithConfig(cfg.Cache.Dir, logs.Default(), cfg)
		if err != nil {
			fatalf("Error opening snapshot cache at %s: %v", cfg.Cache.Dir, err)
		}
		mgr.InitWriteQueue(cfg.Cache.MaxCountPerTxn, cfg.Cache.FlushInterval)
		defer mgr.Close()

		// IDL 文档入缓存，后续离线检查可用
		if err := mgr.SaveIDLDocument(*programID, idlDoc); err != nil {
			logs.Warn("[Main] cache IDL document failed: %v", err)
		}

		if *offline {
			ct, err := db.NewOfflineTransport(mgr, st)
			if err != nil {
				fatalf("Error building offline transport: %v", err)
			}
			transport = ct
		} else {
			ct, err := db.NewCachingTransport(client, mgr, st, cfg.Cache.HotAccountCacheSize)
			if err != nil {
				fatalf("Error building caching transport: %v", err)
			}
			transport = ct
		}
	}

	ctx := context.Background()

	if !*offline {
		if version, err := client.Probe(ctx); err != nil {
			logs.Warn("[Main] node probe failed (%s): %v", cfg.RPC.Endpoint, err)
		} else {
			logs.Info("[Main] node %s solana-core %s", cfg.RPC.Endpoint, version)
		}
	}

	constraints := make([]query.Constraint, 0, len(paths))
	for i, p := range paths {
		constraints = append(constraints, query.Constraint{Path: p, Value: values[i]})
	}

	if len(constraints) == 0 {
		fmt.Printf("Searching for all %s accounts...\n", *accountName)
	} else {
		fmt.Printf("Searching for %s accounts with %d constraints...\n", *accountName, len(constraints))
	}

	scanner := query.NewScanner(transport, cfg.Query, st)
	res, err := scanner.Scan(ctx, *programID, at, constraints)

	var accounts []types.ProgramAccount
	if err != nil {
		if isPlanError(err) {
			fatalf("Error: %v", err)
		}
		// 拉取失败按空结果继续，保持能给出的信息都给出
		fmt.Fprintf(os.Stderr, "Error fetching accounts: %v\n", err)
	} else {
		accounts = res.Accounts
	}

	dumper := output.NewDumper(cfg.Output)
	if dec, err := codec.NewAccountDecoder(at); err == nil {
		dumper = dumper.WithDecoder(dec)
	} else {
		// 含动态尺寸字段的账户导出时不带 extracted_variables
		logs.Debug("[Main] account decoder unavailable: %v", err)
	}

	renderer := output.NewRenderer(os.Stdout, cfg.Output)
	if err := renderer.HandleResults(accounts, dumper, *outputPath, *displayLimit); err != nil {
		fatalf("Error writing results: %v", err)
	}

	if *interest != "" {
		freq, err := query.Tally(accounts, at, *interest)
		if err != nil {
			fatalf("Error analyzing variable %s: %v", *interest, err)
		}
		renderer.RenderFrequency(freq, cfg.Query.DefaultInterestLimit)
	}

	logScanSummary(st, client)
}

// isPlanError 查询还没发出去就失败的错误（输入问题，直接退出）
func isPlanError(err error) bool {
	return errors.Is(err, idl.ErrSchema) ||
		errors.Is(err, idl.ErrUnknownField) ||
		errors.Is(err, codec.ErrValueParse) ||
		errors.Is(err, utils.ErrInvalidPubkey)
}

// logScanSummary 结束时按日志级别输出计数与延迟汇总
func logScanSummary(st *stats.Stats, client *rpc.Client) {
	sum := st.Summarize()
	logs.Info("[Main] fetched=%d matched=%d skipped=%d (short=%d mismatch=%d decode=%d) cache hit=%d miss=%d",
		sum.Fetched, sum.Matched, sum.Skipped(),
		sum.SkipShort, sum.SkipMismatch, sum.SkipDecode,
		sum.CacheHits, sum.CacheMisses)
	for method, count := range sum.RPCCalls {
		logs.Debug("[Main] rpc %s x%d", method, count)
	}
	for method, lat := range client.Latency() {
		logs.Debug("[Main] rpc %s latency p50=%v p95=%v p99=%v max=%v",
			method, lat.P50, lat.P95, lat.P99, lat.Max)
	}
}

// runCacheAdmin 缓存检查/清理模式
func runCacheAdmin(cfg *config.Config, inspect, purge bool) {
	if purge {
		mgr, err := db.NewManagerWithConfig(cfg.Cache.Dir, logs.Default(), cfg)
		if err != nil {
			fatalf("Error opening snapshot cache at %s: %v", cfg.Cache.Dir, err)
		}
		mgr.InitWriteQueue(cfg.Cache.MaxCountPerTxn, cfg.Cache.FlushInterval)
		defer mgr.Close()

		removed, err := mgr.PurgeExpired()
		if err != nil {
			fatalf("Error purging cache: %v", err)
		}
		fmt.Printf("Purged %d expired cache entries from %s\n", removed, cfg.Cache.Dir)
		if inspect {
			printCacheReport(mgr, cfg.Cache.Dir)
		}
		return
	}

	// 只读打开，不碰写队列，也不妨碍其他进程
	mgr, err := db.NewReadOnlyManager(cfg.Cache.Dir, logs.Default(), cfg)
	if err != nil {
		fatalf("Error opening snapshot cache at %s: %v", cfg.Cache.Dir, err)
	}
	defer mgr.Close()
	printCacheReport(mgr, cfg.Cache.Dir)
}

func printCacheReport(mgr *db.Manager, dir string) {
	report, err := mgr.InspectCache()
	if err != nil {
		fatalf("Error inspecting cache: %v", err)
	}

	fmt.Printf("Snapshot cache at %s:\n", dir)
	if len(report.Snapshots) == 0 {
		fmt.Println("  (no snapshots)")
	}
	for _, snap := range report.Snapshots {
		state := ""
		if snap.Expired {
			state = "  [expired]"
		}
		fmt.Printf("  %s  %s/%s  %d accounts  fetched %s%s\n",
			snap.Fingerprint, snap.ProgramID, snap.AccountName,
			snap.Count, snap.FetchedAt.Format("2006-01-02 15:04:05"), state)
		fmt.Printf("      filters: %s\n", snap.FilterDigest)
	}
	fmt.Printf("Keys: %d payload, %d meta, %d catalog, %d other\n",
		report.PayloadKeys, report.MetaKeys, report.CatalogKeys, report.OtherKeys)
	fmt.Printf("Expired snapshots: %d, orphaned fingerprints: %d\n",
		report.ExpiredCount, report.OrphanedCount)
}

func fatalf(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", v...)
	os.Exit(1)
}
