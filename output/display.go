package output

import (
	"fmt"
	"io"

	"solscan/config"
	"solscan/logs"
	"solscan/query"
	"solscan/types"
)

// Renderer 控制台结果输出。
// Format=display 打印逐账户摘要，Format=json 直接把导出文档打到控制台。
type Renderer struct {
	w   io.Writer
	cfg config.OutputConfig
}

func NewRenderer(w io.Writer, cfg config.OutputConfig) *Renderer {
	return &Renderer{w: w, cfg: cfg}
}

// HandleResults 输出检索结果。
// 数量不超过 limit 时全部展示；超过时展示前 limit 条并提示，
// 给了 outputPath 则把完整结果写成 JSON 文件。
func (r *Renderer) HandleResults(accounts []types.ProgramAccount, dumper *Dumper, outputPath string, limit int) error {
	if r.cfg.Format == "json" {
		data, err := dumper.Marshal(accounts)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.w, "%s\n", data)
		return nil
	}

	if len(accounts) == 0 {
		fmt.Fprintln(r.w, "No accounts found matching the criteria.")
		return nil
	}

	if len(accounts) <= limit {
		r.displayAccounts(accounts, len(accounts))
		return nil
	}

	r.displayAccounts(accounts, limit)
	fmt.Fprintf(r.w, "\nShowing %d of %d accounts found.\n", limit, len(accounts))

	if outputPath == "" {
		fmt.Fprintln(r.w, "To see all accounts, use --output to save results to a file.")
		return nil
	}

	written, err := dumper.WriteFile(outputPath, accounts)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.w, "Full results written to %s in JSON format\n", written)
	return nil
}

func (r *Renderer) displayAccounts(accounts []types.ProgramAccount, limit int) {
	fmt.Fprintf(r.w, "Found %d accounts:\n", len(accounts))
	for i, acct := range accounts {
		if i >= limit {
			break
		}
		fmt.Fprintf(r.w, "%d. Pubkey: %s\n", i+1, acct.Pubkey)
		fmt.Fprintf(r.w, "   Data Length: %d bytes\n", acct.DataLen())
		fmt.Fprintf(r.w, "   Lamports: %d\n", acct.Lamports)
		logs.Debug("[Output] %s data preview: %s", acct.Pubkey, hexPreview(acct.Data, r.cfg.MaxDumpBytes))
	}
}

// RenderFrequency 打印 interest 字段的取值频次（按出现次数降序）
func (r *Renderer) RenderFrequency(freq *query.Frequency, k int) {
	if freq == nil {
		return
	}
	fmt.Fprintf(r.w, "Top %d most common values for '%s':\n", k, freq.Path)
	for _, e := range freq.Top(k) {
		fmt.Fprintf(r.w, "Value: %s, Count: %d\n", e.Value.String(), e.Count)
	}
	if freq.Skipped > 0 {
		logs.Debug("[Output] frequency for %s skipped %d undecodable accounts", freq.Path, freq.Skipped)
	}
}

// hexPreview 截断展示原始数据前 max 字节
func hexPreview(data []byte, max int) string {
	if max <= 0 || len(data) == 0 {
		return ""
	}
	if len(data) <= max {
		return fmt.Sprintf("%x", data)
	}
	return fmt.Sprintf("%x... (%d bytes total)", data[:max], len(data))
}
