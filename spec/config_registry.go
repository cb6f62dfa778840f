package spec

import (
	"encoding/json"

	"github.com/zintix-labs/chainspin/errs"
	"gopkg.in/yaml.v3"
)

// GetMachineSettingByYAML
// 會讀取 YAML 設定、初始化各子設定並執行基本檢查後回傳。
func GetMachineSettingByYAML(data []byte) (*MachineSetting, error) {
	ms := &MachineSetting{}
	if err := yaml.Unmarshal(data, ms); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}

	// 設定檔初始化
	if err := ms.Init(); err != nil {
		return nil, errs.Wrap(err, "machine setting initialized err")
	}

	return ms, nil
}

// GetMachineSettingByJSON
// 會讀取 Json 設定、初始化各子設定並執行基本檢查後回傳
func GetMachineSettingByJSON(data []byte) (*MachineSetting, error) {
	ms := &MachineSetting{}
	if err := json.Unmarshal(data, ms); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}

	// 設定檔初始化
	if err := ms.Init(); err != nil {
		return nil, errs.Wrap(err, "machine setting initialized err")
	}

	return ms, nil
}
