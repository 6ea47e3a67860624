package output

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"

	"solscan/codec"
	"solscan/config"
	"solscan/logs"
	"solscan/types"
)

// dump 文件结构：{count, accounts:[...]}
type dumpDocument struct {
	Count    int           `json:"count"`
	Accounts []dumpAccount `json:"accounts"`
}

type dumpAccount struct {
	Pubkey             string                 `json:"pubkey"`
	Data               string                 `json:"data"`
	DataLength         int                    `json:"data_length"`
	Lamports           uint64                 `json:"lamports"`
	Owner              string                 `json:"owner"`
	Executable         bool                   `json:"executable"`
	RentEpoch          uint64                 `json:"rent_epoch"`
	ExtractedVariables map[string]codec.Value `json:"extracted_variables"`
}

// Dumper 把账户列表导出为 JSON 文档。
// 带解码器时 extracted_variables 填入整账户解码出的字段表，
// 解码不了的账户保留空 map，不让个别坏账户拖垮整个导出。
type Dumper struct {
	cfg     config.OutputConfig
	decoder *codec.AccountDecoder
}

func NewDumper(cfg config.OutputConfig) *Dumper {
	return &Dumper{cfg: cfg}
}

// WithDecoder 设置 extracted_variables 的字段解码器
func (d *Dumper) WithDecoder(dec *codec.AccountDecoder) *Dumper {
	d.decoder = dec
	return d
}

// Marshal 生成 JSON 文档字节（带缩进则 pretty-print）
func (d *Dumper) Marshal(accounts []types.ProgramAccount) ([]byte, error) {
	doc := dumpDocument{
		Count:    len(accounts),
		Accounts: make([]dumpAccount, 0, len(accounts)),
	}
	for _, acct := range accounts {
		da := dumpAccount{
			Pubkey:             acct.Pubkey,
			Data:               base64.StdEncoding.EncodeToString(acct.Data),
			DataLength:         acct.DataLen(),
			Lamports:           acct.Lamports,
			Owner:              acct.Owner,
			Executable:         acct.Executable,
			RentEpoch:          acct.RentEpoch,
			ExtractedVariables: map[string]codec.Value{},
		}
		if d.decoder != nil {
			if vars, err := d.decoder.DecodeMap(acct.Data); err == nil {
				da.ExtractedVariables = vars
			} else {
				logs.Debug("[Output] extract variables for %s failed: %v", acct.Pubkey, err)
			}
		}
		doc.Accounts = append(doc.Accounts, da)
	}

	if d.cfg.JSONIndent != "" {
		return json.MarshalIndent(doc, "", d.cfg.JSONIndent)
	}
	return json.Marshal(doc)
}

// WriteFile 把导出文档写到磁盘，返回实际写入的路径。
// 路径以 .lz4 结尾、或配置开了 CompressLZ4 时走 lz4 压缩
// （后者会自动补 .lz4 后缀，读取方按后缀识别压缩格式）。
func (d *Dumper) WriteFile(path string, accounts []types.ProgramAccount) (string, error) {
	data, err := d.Marshal(accounts)
	if err != nil {
		return "", err
	}

	compress := strings.HasSuffix(path, ".lz4")
	if d.cfg.CompressLZ4 && !compress {
		path += ".lz4"
		compress = true
	}

	if compress {
		if err := writeLZ4(path, data); err != nil {
			return "", err
		}
		return path, nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func writeLZ4(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	lw := lz4.NewWriter(f)
	_ = lw.Apply(lz4.BlockSizeOption(lz4.Block64Kb))
	if _, err := lw.Write(data); err != nil {
		return err
	}
	return lw.Close()
}

// ReadDump 读回导出文件，.lz4 后缀自动解压
func ReadDump(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".lz4") {
		return io.ReadAll(lz4.NewReader(bytes.NewReader(raw)))
	}
	return raw, nil
}
