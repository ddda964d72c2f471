// Package constants defines shared configuration constants.
package constants

var (
	ConfigFile = "config.yaml"

	DefaultDir = ".kfind"

	// ConfigDirEnv overrides the directory holding ConfigFile.
	ConfigDirEnv = "KFIND_CONFIG"

	// LoadModuleSymbol is the kernel symbol whose offset kfind reports.
	LoadModuleSymbol = "load_module"

	// ContainerImageSuffix marks boot/container images that must be unpacked
	// before a raw kernel can be analyzed.
	ContainerImageSuffix = ".img"
)
