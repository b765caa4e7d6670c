package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

type fileConfig struct {
	Clipboard string                `toml:"clipboard"`
	Output    string                `toml:"output"`
	Fields    string                `toml:"fields"`
	Origin    string                `toml:"origin"`
	Path      string                `toml:"path"`
	History   *bool                 `toml:"history"`
	Profile   string                `toml:"profile"`
	Serve     serveFileConfig       `toml:"serve"`
	Profiles  map[string]fileConfig `toml:"profiles"`
}

type serveFileConfig struct {
	Addr       string `toml:"addr"`
	LogLevel   string `toml:"log_level"`
	LogFormat  string `toml:"log_format"`
	LogFile    string `toml:"log_file"`
	RatePerMin *int   `toml:"rate_per_min"`
}

func resolveGlobalOptions(cmd *cobra.Command, defaults *globalOptions) (*globalOptions, error) {
	resolved := *defaults

	userPath := defaultUserConfigPath()
	projectPath := ".remindcmd.toml"
	configPath := firstNonEmpty(env("REMINDCMD_CONFIG"), userPath)
	if flagValueChanged(cmd, "config") {
		configPath = defaults.Config
	}

	var files []fileConfig
	if cfg, ok := readConfigFile(userPath); ok {
		files = append(files, cfg)
	}
	if cfg, ok := readConfigFile(projectPath); ok {
		files = append(files, cfg)
	}
	if configPath != "" && configPath != userPath && configPath != projectPath {
		if cfg, ok := readConfigFile(configPath); ok {
			files = append(files, cfg)
		}
	}

	// The profile comes from the flag, then the env, then the last file
	// that names one.
	profile := ""
	for _, cfg := range files {
		if strings.TrimSpace(cfg.Profile) != "" {
			profile = strings.TrimSpace(cfg.Profile)
		}
	}
	profile = firstNonEmpty(env("REMINDCMD_PROFILE"), profile)
	if flagValueChanged(cmd, "profile") {
		profile = defaults.Profile
	}
	if profile == "" {
		profile = firstNonEmpty(defaults.Profile, "default")
	}
	resolved.Profile = profile

	for _, cfg := range files {
		applyFileConfig(&resolved, cfg, profile)
	}

	applyEnv(&resolved)
	applyFlags(cmd, &resolved, defaults)

	if resolved.Config == "" {
		resolved.Config = configPath
	}
	return &resolved, nil
}

func applyFileConfig(dst *globalOptions, cfg fileConfig, profile string) {
	if p, ok := cfg.Profiles[profile]; ok {
		cfg = mergeFileConfig(cfg, p)
	}
	if cfg.Clipboard != "" {
		dst.Clipboard = cfg.Clipboard
	}
	if cfg.Fields != "" {
		dst.Fields = cfg.Fields
	}
	if cfg.Origin != "" {
		dst.Origin = cfg.Origin
	}
	if cfg.Path != "" {
		dst.Path = cfg.Path
	}
	if cfg.History != nil {
		dst.NoHistory = !*cfg.History
	}
	if cfg.Output != "" {
		setOutputMode(dst, cfg.Output)
	}
	if cfg.Serve.Addr != "" {
		dst.Serve.Addr = cfg.Serve.Addr
	}
	if cfg.Serve.LogLevel != "" {
		dst.Serve.LogLevel = cfg.Serve.LogLevel
	}
	if cfg.Serve.LogFormat != "" {
		dst.Serve.LogFormat = cfg.Serve.LogFormat
	}
	if cfg.Serve.LogFile != "" {
		dst.Serve.LogFile = cfg.Serve.LogFile
	}
	if cfg.Serve.RatePerMin != nil {
		dst.Serve.RatePerMin = *cfg.Serve.RatePerMin
	}
}

func mergeFileConfig(base, overlay fileConfig) fileConfig {
	if overlay.Clipboard != "" {
		base.Clipboard = overlay.Clipboard
	}
	if overlay.Output != "" {
		base.Output = overlay.Output
	}
	if overlay.Fields != "" {
		base.Fields = overlay.Fields
	}
	if overlay.Origin != "" {
		base.Origin = overlay.Origin
	}
	if overlay.Path != "" {
		base.Path = overlay.Path
	}
	if overlay.History != nil {
		base.History = overlay.History
	}
	if overlay.Serve.Addr != "" {
		base.Serve.Addr = overlay.Serve.Addr
	}
	if overlay.Serve.LogLevel != "" {
		base.Serve.LogLevel = overlay.Serve.LogLevel
	}
	if overlay.Serve.LogFormat != "" {
		base.Serve.LogFormat = overlay.Serve.LogFormat
	}
	if overlay.Serve.LogFile != "" {
		base.Serve.LogFile = overlay.Serve.LogFile
	}
	if overlay.Serve.RatePerMin != nil {
		base.Serve.RatePerMin = overlay.Serve.RatePerMin
	}
	return base
}

func setOutputMode(dst *globalOptions, mode string) {
	switch strings.ToLower(mode) {
	case "json":
		dst.JSON, dst.JSONL, dst.Plain = true, false, false
	case "jsonl":
		dst.JSON, dst.JSONL, dst.Plain = false, true, false
	case "plain":
		dst.JSON, dst.JSONL, dst.Plain = false, false, true
	}
}

func applyEnv(dst *globalOptions) {
	if v := env("REMINDCMD_CLIPBOARD"); v != "" {
		dst.Clipboard = v
	}
	if v := env("REMINDCMD_FIELDS"); v != "" {
		dst.Fields = v
	}
	if v := env("REMINDCMD_ORIGIN"); v != "" {
		dst.Origin = v
	}
	if v := env("REMINDCMD_PATH"); v != "" {
		dst.Path = v
	}
	if v := env("REMINDCMD_OUTPUT"); v != "" {
		setOutputMode(dst, v)
	}
	if v := env("REMINDCMD_NO_HISTORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			dst.NoHistory = b
		}
	}
}

func applyFlags(cmd *cobra.Command, dst, fromFlags *globalOptions) {
	copyIfChanged(cmd, "json", func() { dst.JSON = fromFlags.JSON })
	copyIfChanged(cmd, "jsonl", func() { dst.JSONL = fromFlags.JSONL })
	copyIfChanged(cmd, "plain", func() { dst.Plain = fromFlags.Plain })
	copyIfChanged(cmd, "fields", func() { dst.Fields = fromFlags.Fields })
	copyIfChanged(cmd, "quiet", func() { dst.Quiet = fromFlags.Quiet })
	copyIfChanged(cmd, "verbose", func() { dst.Verbose = fromFlags.Verbose })
	copyIfChanged(cmd, "profile", func() { dst.Profile = fromFlags.Profile })
	copyIfChanged(cmd, "config", func() { dst.Config = fromFlags.Config })
	copyIfChanged(cmd, "clipboard", func() { dst.Clipboard = fromFlags.Clipboard })
	copyIfChanged(cmd, "origin", func() { dst.Origin = fromFlags.Origin })
	copyIfChanged(cmd, "path", func() { dst.Path = fromFlags.Path })
	copyIfChanged(cmd, "no-history", func() { dst.NoHistory = fromFlags.NoHistory })
	copyIfChanged(cmd, "schema-version", func() { dst.SchemaVersion = fromFlags.SchemaVersion })

	// If exactly one output mode flag is explicitly set, it overrides env/config output mode.
	modeSet := 0
	if flagValueChanged(cmd, "json") && fromFlags.JSON {
		modeSet++
	}
	if flagValueChanged(cmd, "jsonl") && fromFlags.JSONL {
		modeSet++
	}
	if flagValueChanged(cmd, "plain") && fromFlags.Plain {
		modeSet++
	}
	if modeSet == 1 {
		if flagValueChanged(cmd, "json") && fromFlags.JSON {
			setOutputMode(dst, "json")
		}
		if flagValueChanged(cmd, "jsonl") && fromFlags.JSONL {
			setOutputMode(dst, "jsonl")
		}
		if flagValueChanged(cmd, "plain") && fromFlags.Plain {
			setOutputMode(dst, "plain")
		}
	}
}

func copyIfChanged(cmd *cobra.Command, name string, fn func()) {
	if flagValueChanged(cmd, name) {
		fn()
	}
}

func flagValueChanged(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := cmd.InheritedFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

func readConfigFile(path string) (fileConfig, bool) {
	if strings.TrimSpace(path) == "" {
		return fileConfig{}, false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, false
	}
	var cfg fileConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return fileConfig{}, false
	}
	return cfg, true
}

func defaultUserConfigPath() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "remindcmd", "config.toml")
	}
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "remindcmd", "config.toml")
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
