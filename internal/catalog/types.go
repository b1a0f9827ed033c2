// 包 catalog：DSS 目录的数据模型与缺省值规范化，供翻译、空间判定与查询共用
package catalog

// 执行类型：闭集，未识别的取值在查询过滤中被忽略
const (
	ExecutionOnTheFly = "ONTHEFLY"
	ExecutionLink     = "LINK"
)

// IsValidExecutionType：判定执行类型是否属于已识别集合（区分大小写）
func IsValidExecutionType(t string) bool {
	return t == ExecutionOnTheFly || t == ExecutionLink
}

// 文档注释：决策支持系统（DSS）目录记录
// 背景：(id, version) 为自然键；同 id 不同 version 用于归档旧版本。
// 约束：由存储层加载后经 Normalize 补齐缺省值；投影（翻译/过滤）必须先 Clone，不得原地修改。
type DSS struct {
	ID           string       `yaml:"id" json:"id"`
	Version      string       `yaml:"version" json:"version"`
	Name         string       `yaml:"name" json:"name"`
	URL          string       `yaml:"url" json:"url"`
	Languages    []string     `yaml:"languages" json:"languages"`
	Organization Organization `yaml:"organization" json:"organization"`
	LogoURL      string       `yaml:"logo_url,omitempty" json:"logo_url,omitempty"`
	Models       []Model      `yaml:"models" json:"models"`
}

type Organization struct {
	Name       string `yaml:"name" json:"name"`
	Country    string `yaml:"country" json:"country"`
	Address    string `yaml:"address" json:"address"`
	PostalCode string `yaml:"postal_code" json:"postal_code"`
	City       string `yaml:"city" json:"city"`
	Email      string `yaml:"email" json:"email"`
	URL        string `yaml:"url" json:"url"`
}

// Model：DSS 内的单个模型，id 在所属 DSS 内唯一
type Model struct {
	ID                string       `yaml:"id" json:"id"`
	Version           string       `yaml:"version" json:"version"`
	Name              string       `yaml:"name" json:"name"`
	Purpose           string       `yaml:"purpose" json:"purpose"`
	Description       string       `yaml:"description" json:"description"`
	DescriptionURL    string       `yaml:"description_URL" json:"description_URL"`
	Citation          string       `yaml:"citation" json:"citation"`
	Keywords          string       `yaml:"keywords" json:"keywords"`
	TypeOfDecision    string       `yaml:"type_of_decision" json:"type_of_decision"`
	TypeOfOutput      string       `yaml:"type_of_output" json:"type_of_output"`
	PlatformValidated bool         `yaml:"platform_validated" json:"platform_validated"`
	Authors           []Author     `yaml:"authors" json:"authors"`
	Crops             []string     `yaml:"crops" json:"crops"`
	Pests             []string     `yaml:"pests" json:"pests"`
	Execution         Execution    `yaml:"execution" json:"execution"`
	Input             *Input       `yaml:"input,omitempty" json:"input,omitempty"`
	ValidSpatial      ValidSpatial `yaml:"valid_spatial" json:"valid_spatial"`
	Output            *Output      `yaml:"output,omitempty" json:"output,omitempty"`
}

type Author struct {
	Name         string `yaml:"name" json:"name"`
	Email        string `yaml:"email" json:"email"`
	Organization string `yaml:"organization" json:"organization"`
}

// Execution：执行描述；InputSchema 为 JSON 文本，翻译时展开为路径树
type Execution struct {
	Type                  string                `yaml:"type" json:"type"`
	Endpoint              string                `yaml:"endpoint" json:"endpoint"`
	FormMethod            string                `yaml:"form_method" json:"form_method"`
	ContentType           string                `yaml:"content_type" json:"content_type"`
	InputSchema           string                `yaml:"input_schema" json:"input_schema"`
	InputSchemaCategories InputSchemaCategories `yaml:"input_schema_categories" json:"input_schema_categories"`
}

// InputSchemaCategories：字段分类列表，规范化后永不为 nil
type InputSchemaCategories struct {
	Hidden    []string `yaml:"hidden" json:"hidden"`
	Internal  []string `yaml:"internal" json:"internal"`
	Triggered []string `yaml:"triggered" json:"triggered"`
	UserInit  []string `yaml:"user_init" json:"user_init"`
	System    []string `yaml:"system" json:"system"`
}

type Input struct {
	Weather          []WeatherInput    `yaml:"weather" json:"weather"`
	FieldObservation *FieldObservation `yaml:"field_observation,omitempty" json:"field_observation,omitempty"`
}

type WeatherInput struct {
	ParameterCode int `yaml:"parameter_code" json:"parameter_code"`
	Interval      int `yaml:"interval" json:"interval"`
}

type FieldObservation struct {
	Species []string `yaml:"species" json:"species"`
}

type Output struct {
	WarningStatusInterpretation []WarningStatus   `yaml:"warning_status_interpretation" json:"warning_status_interpretation"`
	ChartHeading                string            `yaml:"chart_heading" json:"chart_heading"`
	ChartGroups                 []ChartGroup      `yaml:"chart_groups" json:"chart_groups"`
	ResultParameters            []ResultParameter `yaml:"result_parameters" json:"result_parameters"`
}

type WarningStatus struct {
	Explanation       string `yaml:"explanation" json:"explanation"`
	RecommendedAction string `yaml:"recommended_action" json:"recommended_action"`
}

type ChartGroup struct {
	ID                 string   `yaml:"id" json:"id"`
	Title              string   `yaml:"title" json:"title"`
	DefaultVisible     bool     `yaml:"default_visible" json:"default_visible"`
	ResultParameterIDs []string `yaml:"result_parameter_ids" json:"result_parameter_ids"`
}

type ResultParameter struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Coverage：空间有效性的判别标签，在加载时确定一次；零值表示尚未判定
type Coverage int

const (
	CoverageUnclassified Coverage = iota
	CoverageUnset
	CoverageRegional
	CoverageGlobal
)

func (c Coverage) String() string {
	switch c {
	case CoverageRegional:
		return "regional"
	case CoverageGlobal:
		return "global"
	case CoverageUnset:
		return "unset"
	}
	return "unclassified"
}

// 文档注释：模型空间有效性描述
// 背景：国家列表与自定义几何可同时存在（取并集）；全球标记使其余字段失效。
// 约束：Coverage 不参与序列化，由 Normalize 根据 GeoJSON 与国家列表推导。
type ValidSpatial struct {
	Countries []string `yaml:"countries" json:"countries"`
	GeoJSON   string   `yaml:"geoJSON" json:"geoJSON"`
	Coverage  Coverage `yaml:"-" json:"-"`
}
