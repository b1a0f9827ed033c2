package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RiskMaps：平台提供的风险地图目录，按提供方分组
type RiskMaps struct {
	Providers []RiskMapProvider `yaml:"risk_map_providers" json:"risk_map_providers"`
}

type RiskMapProvider struct {
	ID         string    `yaml:"id" json:"id"`
	Name       string    `yaml:"name" json:"name"`
	Country    string    `yaml:"country" json:"country"`
	Address    string    `yaml:"address" json:"address"`
	PostalCode string    `yaml:"postal_code" json:"postal_code"`
	City       string    `yaml:"city" json:"city"`
	Email      string    `yaml:"email" json:"email"`
	URL        string    `yaml:"url" json:"url"`
	RiskMaps   []RiskMap `yaml:"risk_maps" json:"risk_maps"`
}

// RiskMap：一个 WMS 风险地图；PlatformValidated 未声明时为 nil
type RiskMap struct {
	ID                string `yaml:"id" json:"id"`
	Title             string `yaml:"title" json:"title"`
	WMSURL            string `yaml:"wms_url" json:"wms_url"`
	PlatformValidated *bool  `yaml:"platform_validated" json:"platform_validated"`
}

// DecodeRiskMapsYAML：解析风险地图目录；缺省列表补为空切片，JSON 输出为 []
func DecodeRiskMapsYAML(b []byte) (RiskMaps, error) {
	var rm RiskMaps
	if err := yaml.Unmarshal(b, &rm); err != nil {
		return RiskMaps{}, fmt.Errorf("decode risk maps yaml: %w", err)
	}
	if rm.Providers == nil {
		rm.Providers = []RiskMapProvider{}
	}
	for i := range rm.Providers {
		if rm.Providers[i].RiskMaps == nil {
			rm.Providers[i].RiskMaps = []RiskMap{}
		}
	}
	return rm, nil
}

// EncodeRiskMapsYAML：写回 YAML，供数据库后端保存原文
func EncodeRiskMapsYAML(rm RiskMaps) ([]byte, error) {
	b, err := yaml.Marshal(rm)
	if err != nil {
		return nil, fmt.Errorf("encode risk maps yaml: %w", err)
	}
	return b, nil
}
