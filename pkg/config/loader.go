package config

import (
	"errors"

	"github.com/giongto35/socketrtc/pkg/os"
	"github.com/kkyr/fig"
)

const EnvPrefix = "SOCKETRTC"

const fileName = "config.yaml"

// LoadConfig loads a configuration file into the given struct.
// The path param specifies a custom path to the configuration file.
// Reads and puts environment variables with the prefix SOCKETRTC_.
// Params from the config should be in uppercase separated with _,
// i.e. SOCKETRTC_SIGNALING_URL.
// A missing file is not an error, defaults and env are used then.
func LoadConfig(config any, path string) error {
	dirs := []string{path}
	if path == "" {
		dirs = append(dirs, ".", "configs", "../../configs")
		if dir, ok := os.HomeDir(".socketrtc"); ok {
			dirs = append(dirs, dir)
		}
	}
	err := fig.Load(config, fig.File(fileName), fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
	if errors.Is(err, fig.ErrFileNotFound) {
		return LoadConfigEnv(config)
	}
	return err
}

func LoadConfigEnv(config any) error {
	return fig.Load(config, fig.IgnoreFile(), fig.UseEnv(EnvPrefix))
}
