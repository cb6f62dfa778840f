// Package demo_configs 內嵌示範機台設定，給 lab server 與模擬器當預設目錄。
package demo_configs

import "embed"

//go:embed *.yaml
var FS embed.FS
