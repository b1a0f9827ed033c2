package catalog

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeYAML：解析单个 DSS 的 YAML 文档并规范化
func DecodeYAML(b []byte) (DSS, error) {
	var d DSS
	if err := yaml.Unmarshal(b, &d); err != nil {
		return DSS{}, fmt.Errorf("decode dss yaml: %w", err)
	}
	return Normalize(d), nil
}

// EncodeYAML：写回 YAML，缩进两格与目录文件保持一致
func EncodeYAML(d DSS) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode dss yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
