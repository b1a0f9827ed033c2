package query

import "dss-api/internal/catalog"

// FindDSS：按 id 精确查找；同 id 多版本时返回目录中第一个
func FindDSS(list []catalog.DSS, id string) (catalog.DSS, bool) {
	for _, d := range list {
		if d.ID == id {
			return d, true
		}
	}
	return catalog.DSS{}, false
}

// FindModel：在指定 DSS 中按模型 id 查找
func FindModel(list []catalog.DSS, dssID, modelID string) (catalog.Model, bool) {
	d, ok := FindDSS(list, dssID)
	if !ok {
		return catalog.Model{}, false
	}
	return d.Model(modelID)
}

// Crops：目录中出现过的全部作物代码，按首次出现顺序去重
func Crops(list []catalog.DSS) []string {
	return distinct(list, func(m catalog.Model) []string { return m.Crops })
}

// Pests：目录中出现过的全部害虫代码，按首次出现顺序去重
func Pests(list []catalog.DSS) []string {
	return distinct(list, func(m catalog.Model) []string { return m.Pests })
}

func distinct(list []catalog.DSS, pick func(catalog.Model) []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, d := range list {
		for _, m := range d.Models {
			for _, c := range pick(m) {
				if !seen[c] {
					seen[c] = true
					out = append(out, c)
				}
			}
		}
	}
	return out
}
