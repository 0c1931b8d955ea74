package graph

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/atlekbai/fsm"
)

// YAML renders machine info as a YAML document.
func YAML(machineInfo *fsm.MachineInfo) (string, error) {
	out, err := yaml.Marshal(machineInfo)
	if err != nil {
		return "", fmt.Errorf("marshal machine info: %w", err)
	}
	return string(out), nil
}

// ParseYAML reads machine info written by YAML. The result can be rendered
// with UmlDotGraph or MermaidGraph without the machine it came from.
func ParseYAML(data []byte) (*fsm.MachineInfo, error) {
	var info fsm.MachineInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("unmarshal machine info: %w", err)
	}
	return &info, nil
}
