package config

type GateConfig interface {
	GetLoginPath() string
	GetHomePath() string
	GetGateBypass() []string
}

var _ GateConfig = EnvVars{}

func (e EnvVars) GetLoginPath() string {
	return e.LoginPath
}

func (e EnvVars) GetHomePath() string {
	return e.HomePath
}

// GetGateBypass returns the bypass patterns in evaluation order, nil for the built-in list
func (e EnvVars) GetGateBypass() []string {
	return e.GateBypass
}
