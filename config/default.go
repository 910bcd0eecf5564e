package config

import _ "embed"

// DefaultConfigYAML 嵌入的默认配置，外部配置文件和环境变量可以覆盖
//
//go:embed default.yaml
var DefaultConfigYAML []byte
