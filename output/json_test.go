package output_test

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solscan/codec"
	"solscan/config"
	"solscan/idl"
	"solscan/output"
	"solscan/types"
)

const positionIDL = `{
  "accounts": [
    {
      "name": "Position",
      "type": {
        "kind": "struct",
        "fields": [
          {"name": "size", "type": "u64"},
          {"name": "side", "type": "u8"}
        ]
      }
    }
  ]
}`

func positionDecoder(t *testing.T) *codec.AccountDecoder {
	t.Helper()
	catalog, err := idl.Parse([]byte(positionIDL))
	require.NoError(t, err)
	at, err := catalog.Account("Position")
	require.NoError(t, err)
	dec, err := codec.NewAccountDecoder(at)
	require.NoError(t, err)
	return dec
}

// positionData 构造一个合法的 Position 账户数据
func positionData(t *testing.T, size uint64, side uint8) []byte {
	t.Helper()
	discrim := idl.Discriminator("Position")
	data := make([]byte, 0, 17)
	data = append(data, discrim[:]...)
	data = binary.LittleEndian.AppendUint64(data, size)
	data = append(data, side)
	return data
}

func TestDumpDocumentShape(t *testing.T) {
	cfg := config.DefaultConfig().Output
	d := output.NewDumper(cfg).WithDecoder(positionDecoder(t))

	data := positionData(t, 1000, 2)
	accounts := []types.ProgramAccount{{
		Pubkey:     "PosAcct1",
		Data:       data,
		Lamports:   2282880,
		Owner:      "PERPHjGBqRHArX4DySjwM6UJHiR3sWAatqfdBS2qQJu",
		Executable: false,
		RentEpoch:  361,
	}}

	raw, err := d.Marshal(accounts)
	require.NoError(t, err)

	// 1、顶层 {count, accounts}
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Contains(t, doc, "count")
	require.Contains(t, doc, "accounts")

	// 2、账户条目字段齐全，data 为 base64
	var entries []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["accounts"], &entries))
	require.Len(t, entries, 1)
	entry := entries[0]
	for _, key := range []string{
		"pubkey", "data", "data_length", "lamports",
		"owner", "executable", "rent_epoch", "extracted_variables",
	} {
		assert.Contains(t, entry, key, "missing key %s", key)
	}

	var dataB64 string
	require.NoError(t, json.Unmarshal(entry["data"], &dataB64))
	assert.Equal(t, base64.StdEncoding.EncodeToString(data), dataB64)

	var dataLen int
	require.NoError(t, json.Unmarshal(entry["data_length"], &dataLen))
	assert.Equal(t, len(data), dataLen)

	// 3、extracted_variables 填入了解码结果
	var vars map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(entry["extracted_variables"], &vars))
	assert.JSONEq(t, "1000", string(vars["size"]))
	assert.JSONEq(t, "2", string(vars["side"]))
}

func TestDumpWithoutDecoderKeepsEmptyVariables(t *testing.T) {
	cfg := config.DefaultConfig().Output
	d := output.NewDumper(cfg)

	raw, err := d.Marshal([]types.ProgramAccount{{Pubkey: "A", Data: []byte{1, 2}}})
	require.NoError(t, err)

	var doc struct {
		Accounts []struct {
			ExtractedVariables map[string]json.RawMessage `json:"extracted_variables"`
		} `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Accounts, 1)
	assert.NotNil(t, doc.Accounts[0].ExtractedVariables)
	assert.Empty(t, doc.Accounts[0].ExtractedVariables)
}

func TestDumpUndecodableAccountStillExported(t *testing.T) {
	cfg := config.DefaultConfig().Output
	d := output.NewDumper(cfg).WithDecoder(positionDecoder(t))

	// 判别码不对：data 原样导出，extracted_variables 为空
	other := idl.Discriminator("SomethingElse")
	bad := append(other[:], 0x01, 0x02)
	raw, err := d.Marshal([]types.ProgramAccount{{Pubkey: "Bad", Data: bad}})
	require.NoError(t, err)

	var doc struct {
		Count    int `json:"count"`
		Accounts []struct {
			Data               string                     `json:"data"`
			ExtractedVariables map[string]json.RawMessage `json:"extracted_variables"`
		} `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, 1, doc.Count)
	require.Len(t, doc.Accounts, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString(bad), doc.Accounts[0].Data)
	assert.Empty(t, doc.Accounts[0].ExtractedVariables)
}

func TestDumpLZ4RoundTrip(t *testing.T) {
	cfg := config.DefaultConfig().Output
	d := output.NewDumper(cfg)
	path := filepath.Join(t.TempDir(), "accounts.json.lz4")

	accounts := displayAccountsFixture(3)

	// 1、.lz4 后缀走压缩
	written, err := d.WriteFile(path, accounts)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	// 2、磁盘上不是明文 JSON
	compressed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(compressed), `"count"`)

	// 3、ReadDump 解压后与 Marshal 一致
	plain, err := output.ReadDump(path)
	require.NoError(t, err)
	want, err := d.Marshal(accounts)
	require.NoError(t, err)
	assert.Equal(t, want, plain)
}

func TestWriteFileAppendsSuffixWhenConfigured(t *testing.T) {
	cfg := config.DefaultConfig().Output
	cfg.CompressLZ4 = true
	d := output.NewDumper(cfg)
	path := filepath.Join(t.TempDir(), "out.json")

	written, err := d.WriteFile(path, displayAccountsFixture(1))
	require.NoError(t, err)
	assert.Equal(t, path+".lz4", written)

	_, err = os.Stat(path + ".lz4")
	require.NoError(t, err)

	plain, err := output.ReadDump(written)
	require.NoError(t, err)
	var doc struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(plain, &doc))
	assert.Equal(t, 1, doc.Count)
}

func TestMarshalIndent(t *testing.T) {
	cfg := config.DefaultConfig().Output
	cfg.JSONIndent = "  "
	d := output.NewDumper(cfg)

	raw, err := d.Marshal(nil)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"count\"")
}
